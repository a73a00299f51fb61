package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// SessionUseCase owns the authenticated session: token, current user, and
// the persisted copy of both. It is safe for concurrent use; the API client
// reads the token from it while commands mutate it.
type SessionUseCase struct {
	accounts ports.AccountAPI
	vault    ports.SessionVault
	logger   *slog.Logger

	mu    sync.RWMutex
	token string
	user  *domain.User
}

func NewSessionUseCase(accounts ports.AccountAPI, vault ports.SessionVault, logger *slog.Logger) *SessionUseCase {
	uc := &SessionUseCase{
		accounts: accounts,
		vault:    vault,
		logger:   logger,
	}
	uc.rehydrate()
	return uc
}

func (uc *SessionUseCase) rehydrate() {
	token, user, err := uc.vault.Load()
	if err != nil {
		uc.logger.Warn("session_restore_failed", "error", err)
		return
	}
	if token == "" || user == nil {
		return
	}
	uc.mu.Lock()
	uc.token = token
	uc.user = user
	uc.mu.Unlock()
	uc.logger.Info("session_restored", "user_id", user.ID)
}

// Token is the TokenSource for the API client. Empty when unauthenticated.
func (uc *SessionUseCase) Token() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.token
}

func (uc *SessionUseCase) Authenticated() bool {
	return uc.Token() != ""
}

// CurrentUser returns the cached user snapshot, nil when unauthenticated.
func (uc *SessionUseCase) CurrentUser() *domain.User {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.user == nil {
		return nil
	}
	copied := *uc.user
	return &copied
}

func (uc *SessionUseCase) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	grant, err := uc.accounts.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("login: empty access token in response")
	}
	uc.adopt(grant)
	return uc.CurrentUser(), nil
}

// Register creates the account and immediately logs in with the same
// credentials, so a fresh registration lands in an authenticated session.
func (uc *SessionUseCase) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if _, err := uc.accounts.Register(ctx, reg); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return uc.Login(ctx, domain.Credentials{Email: reg.Email, Password: reg.Password})
}

func (uc *SessionUseCase) adopt(grant *domain.AuthGrant) {
	user := grant.User

	uc.mu.Lock()
	uc.token = grant.AccessToken
	uc.user = &user
	uc.mu.Unlock()

	if err := uc.vault.Save(grant.AccessToken, &user); err != nil {
		uc.logger.Warn("session_persist_failed", "error", err)
	}
	uc.logger.Info("session_started", "user_id", user.ID)
}

func (uc *SessionUseCase) Logout() error {
	uc.mu.Lock()
	uc.token = ""
	uc.user = nil
	uc.mu.Unlock()

	if err := uc.vault.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	uc.logger.Info("session_ended")
	return nil
}

// HandleUnauthorized is the OnUnauthorized hook for the API client. It
// drops the in-memory and persisted session; repeated invocations from
// concurrent requests are harmless.
func (uc *SessionUseCase) HandleUnauthorized() {
	uc.mu.Lock()
	hadSession := uc.token != ""
	uc.token = ""
	uc.user = nil
	uc.mu.Unlock()

	if err := uc.vault.Clear(); err != nil {
		uc.logger.Warn("session_clear_failed", "error", err)
	}
	if hadSession {
		uc.logger.Warn("session_expired")
	}
}

// RefreshProfile re-fetches the profile and updates the persisted snapshot.
func (uc *SessionUseCase) RefreshProfile(ctx context.Context) (*domain.User, error) {
	user, err := uc.accounts.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	uc.replaceUser(user)
	return uc.CurrentUser(), nil
}

// UpdateProfile sends a sparse patch; an empty patch is rejected before any
// request goes out.
func (uc *SessionUseCase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Empty() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update profile", fmt.Errorf("no fields to update"))
	}
	user, err := uc.accounts.UpdateProfile(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	uc.replaceUser(user)
	return uc.CurrentUser(), nil
}

func (uc *SessionUseCase) IdentificationCheck(ctx context.Context) (*domain.IdentificationCheck, error) {
	check, err := uc.accounts.IdentificationCheck(ctx)
	if err != nil {
		return nil, fmt.Errorf("identification check: %w", err)
	}
	return check, nil
}

// UploadPhoto stores a new profile photo and records the returned URL on
// the cached user snapshot.
func (uc *SessionUseCase) UploadPhoto(ctx context.Context, filename string, data []byte) (string, error) {
	photoURL, err := uc.accounts.UploadProfilePhoto(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	uc.mu.Lock()
	if uc.user != nil {
		uc.user.PhotoURL = photoURL
	}
	user := uc.user
	token := uc.token
	uc.mu.Unlock()

	if token != "" && user != nil {
		if err := uc.vault.Save(token, user); err != nil {
			uc.logger.Warn("session_persist_failed", "error", err)
		}
	}
	return photoURL, nil
}

func (uc *SessionUseCase) replaceUser(user *domain.User) {
	uc.mu.Lock()
	token := uc.token
	uc.user = user
	uc.mu.Unlock()

	if token != "" && user != nil {
		if err := uc.vault.Save(token, user); err != nil {
			uc.logger.Warn("session_persist_failed", "error", err)
		}
	}
}
