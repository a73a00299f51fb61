package localfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baremaai/companion/internal/core/domain"
)

const (
	tokenFile = "auth_token"
	userFile  = "user_data.json"
)

// Vault keeps the auth token and the last-known user snapshot on disk,
// which is the only client-side state that survives restarts. Files are
// written 0600 inside a 0700 directory.
type Vault struct {
	basePath string
}

func New(basePath string) (*Vault, error) {
	if basePath == "" {
		basePath = ".barema"
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Vault{basePath: basePath}, nil
}

// Load restores the persisted session. A missing token means no session.
// An unreadable user snapshot invalidates the whole session: the vault is
// cleared and the caller starts unauthenticated.
func (v *Vault) Load() (string, *domain.User, error) {
	tokenBytes, err := os.ReadFile(filepath.Join(v.basePath, tokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return "", nil, nil
	}

	userBytes, err := os.ReadFile(filepath.Join(v.basePath, userFile))
	if err != nil {
		if clearErr := v.Clear(); clearErr != nil {
			return "", nil, clearErr
		}
		return "", nil, nil
	}

	var user domain.User
	if err := json.Unmarshal(userBytes, &user); err != nil {
		if clearErr := v.Clear(); clearErr != nil {
			return "", nil, clearErr
		}
		return "", nil, nil
	}
	return token, &user, nil
}

func (v *Vault) Save(token string, user *domain.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("save session: token and user are required")
	}

	userBytes, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(v.basePath, userFile), userBytes); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(v.basePath, tokenFile), []byte(token)); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (v *Vault) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(v.basePath, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
