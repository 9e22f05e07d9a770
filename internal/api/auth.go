package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token and the user profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"username": username, "password": password},
		schema: "login",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		schema: "login",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile of the token owner.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/auth/me", authed: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RequestPasswordReset asks the backend to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, call{
		op:     "password reset",
		method: http.MethodPost,
		path:   "/auth/password-reset",
		body:   map[string]string{"email": email},
	}, nil)
}

// ConfirmPasswordReset sets a new password using the token from a reset
// link. It returns the backend's confirmation text, which may be empty.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, email, password string) (string, error) {
	var out messageResponse
	err := c.do(ctx, call{
		op:     "password reset confirm",
		method: http.MethodPost,
		path:   "/auth/password-reset/confirm",
		body:   map[string]string{"token": token, "email": email, "newPassword": password},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// CheckAvailability reports whether username and email are free to register.
func (c *Client) CheckAvailability(ctx context.Context, username, email string) (*Availability, error) {
	q := map[string]string{}
	if username != "" {
		q["username"] = username
	}
	if email != "" {
		q["email"] = email
	}
	var out Availability
	err := c.do(ctx, call{op: "availability", method: http.MethodGet, path: "/auth/availability", query: q}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the password of the token owner.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, call{
		op:     "change password",
		method: http.MethodPost,
		path:   "/auth/change-password",
		authed: true,
		body:   map[string]string{"currentPassword": current, "newPassword": next},
	}, nil)
}

// UploadProfilePicture uploads the image at path as the profile picture.
func (c *Client) UploadProfilePicture(ctx context.Context, path string) error {
	return c.do(ctx, call{
		op:     "profile picture",
		method: http.MethodPut,
		path:   "/auth/profile-picture",
		authed: true,
		file:   path,
	}, nil)
}

// ProfilePicture downloads the profile picture of the token owner.
func (c *Client) ProfilePicture(ctx context.Context) ([]byte, error) {
	raw, _, err := c.execute(ctx, call{
		op:     "profile picture",
		method: http.MethodGet,
		path:   "/auth/profile-picture",
		authed: true,
	})
	return raw, err
}

// DeleteProfilePicture removes the profile picture of the token owner.
func (c *Client) DeleteProfilePicture(ctx context.Context) error {
	return c.do(ctx, call{
		op:     "profile picture",
		method: http.MethodDelete,
		path:   "/auth/profile-picture",
		authed: true,
	}, nil)
}
