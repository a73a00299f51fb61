package api

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/baremaai/companion/internal/core/domain"
)

// Register creates the account. It does not authenticate; callers that want
// a session log in right after with the same credentials.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var user domain.User
	if err := c.postJSON(ctx, "users.register", "/users/register", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthGrant, error) {
	var grant domain.AuthGrant
	if err := c.postJSON(ctx, "users.login", "/users/login", creds, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, "users.profile", "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.patchJSON(ctx, "users.update_profile", "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) IdentificationCheck(ctx context.Context) (*domain.IdentificationCheck, error) {
	var check domain.IdentificationCheck
	if err := c.getJSON(ctx, "users.identification_check", "/users/me/identification-check", nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// UploadProfilePhoto sends the image as multipart form data and returns the
// stored photo URL.
func (c *Client) UploadProfilePhoto(ctx context.Context, filename string, data io.Reader) (string, error) {
	var photoURL string
	err := c.do(ctx, "users.upload_photo", false, func(ctx context.Context) (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetFileReader("file", filename, data).
			Post("/users/profile/photo")
		if err == nil && !resp.IsError() {
			photoURL = gjson.GetBytes(resp.Body(), "photo_url").String()
		}
		return resp, err
	})
	if err != nil {
		return "", err
	}
	return photoURL, nil
}
