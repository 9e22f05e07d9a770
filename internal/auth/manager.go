// Package auth owns the learner's session: the bearer token, the current
// user and the authenticated/unauthenticated state machine.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/kv"
)

// TokenKey is the storage key of the bearer token in both stores.
const TokenKey = "session.token"

// ResetMessage is returned for every password reset request that reached the
// backend, whether or not the account exists.
const ResetMessage = "If an account exists for that email, a reset link has been sent."

// PasswordUpdatedMessage confirms a reset when the backend sends no text.
const PasswordUpdatedMessage = "Password updated. You may now log in."

const resetFailedMessage = "Unable to reset password. The link may have expired."

// ErrNoProfilePicture is returned for picture operations on a profile
// without one.
var ErrNoProfilePicture = errors.New("you have no profile picture")

// Status is the session state.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Session is a token plus the user it belongs to.
type Session struct {
	Token string
	User  *api.User
}

// Backend is the subset of the REST client the session manager needs.
type Backend interface {
	SetToken(token string)
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, email, password string) (string, error)
	CheckAvailability(ctx context.Context, username, email string) (*api.Availability, error)
	ChangePassword(ctx context.Context, current, next string) error
	UploadProfilePicture(ctx context.Context, path string) error
	ProfilePicture(ctx context.Context) ([]byte, error)
	DeleteProfilePicture(ctx context.Context) error
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Confirm    string
	License    string
	RememberMe bool
}

// ResetInput completes a password reset.
type ResetInput struct {
	Token    string
	Email    string
	Password string
	Confirm  string
}

// Manager is safe for concurrent use. Backend calls are made without holding
// the lock so that an unauthorized hook fired mid-call can call Expire.
type Manager struct {
	backend  Backend
	durable  kv.Store
	volatile kv.Store
	now      func() time.Time

	mu     sync.RWMutex
	status Status
	token  string
	user   *api.User
}

// NewManager creates a Manager in StatusLoading. Call Init to resolve it.
func NewManager(backend Backend, durable, volatile kv.Store) *Manager {
	return &Manager{
		backend:  backend,
		durable:  durable,
		volatile: volatile,
		now:      time.Now,
		status:   StatusLoading,
	}
}

// Status returns the current session state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// User returns the current user, or nil.
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAuthenticated reports whether both a token and a user are present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// Init resolves StatusLoading by validating any stored token against the
// backend. A transport failure leaves the stored token in place and returns
// the error so the caller can offer a retry.
func (m *Manager) Init(ctx context.Context) error {
	m.setStatus(StatusLoading)

	token, ok, err := m.durable.Get(ctx, TokenKey)
	if err != nil {
		slog.Warn("read stored token", "err", err)
	}
	if !ok || token == "" {
		m.setUnauthenticated()
		return nil
	}

	if tokenExpired(token, m.now()) {
		slog.Info("stored token has expired")
		m.clear(ctx)
		return nil
	}

	m.backend.SetToken(token)
	user, err := m.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			m.clear(ctx)
			return nil
		}
		m.backend.SetToken("")
		m.setUnauthenticated()
		return fmt.Errorf("validate session: %w", err)
	}

	m.mu.Lock()
	m.token, m.user, m.status = token, user, StatusAuthenticated
	m.mu.Unlock()
	return nil
}

// Login authenticates and establishes a session. The token always goes to
// the durable store, so a later process can restore the session; without
// rememberMe it is also mirrored to the volatile store.
func (m *Manager) Login(ctx context.Context, username, password string, rememberMe bool) (Session, error) {
	if err := check(loginForm{Username: username, Password: password}); err != nil {
		return Session{}, err
	}
	resp, err := m.backend.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	m.establish(ctx, resp.Token, resp.User, rememberMe)
	return Session{Token: resp.Token, User: resp.User}, nil
}

// Register validates the form locally, creates the account and logs it in.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*api.User, error) {
	form := registerForm{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Confirm:  in.Confirm,
		License:  in.License,
	}
	if err := check(form); err != nil {
		return nil, err
	}
	resp, err := m.backend.Register(ctx, api.RegisterRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		License:  in.License,
	})
	if err != nil {
		return nil, err
	}
	m.establish(ctx, resp.Token, resp.User, in.RememberMe)
	return resp.User, nil
}

// RefreshUser refetches the current user. It returns nil without error when
// there is no session, and nil after a 401 has ended the session.
func (m *Manager) RefreshUser(ctx context.Context) (*api.User, error) {
	if m.Token() == "" {
		return nil, nil
	}
	user, err := m.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			m.Expire()
			return nil, nil
		}
		return nil, err
	}
	m.mu.Lock()
	if m.token != "" {
		m.user = user
	}
	m.mu.Unlock()
	return user, nil
}

// Logout ends the session and clears both stores.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
}

// Expire ends the session after the backend rejected the token. It is
// registered as the API client's unauthorized hook.
func (m *Manager) Expire() {
	if m.Token() == "" {
		return
	}
	slog.Info("session expired")
	m.clear(context.Background())
}

// RequestPasswordReset asks the backend to send a reset link. Any answer the
// backend gives, including "no such account", produces ResetMessage; only a
// failure to reach the backend is returned as an error.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := check(resetForm{Email: email}); err != nil {
		return "", err
	}
	err := m.backend.RequestPasswordReset(ctx, email)
	if err == nil || errors.Is(err, api.ErrNotFound) {
		return ResetMessage, nil
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return "", err
	}
	slog.Debug("password reset rejected", "err", err)
	return ResetMessage, nil
}

// ConfirmPasswordReset sets a new password from a reset token. It does not
// log in. A rejected token or email reads as an expired link; field errors
// and transport failures are returned as they are.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, in ResetInput) (string, error) {
	form := resetConfirmForm{Token: in.Token, Email: in.Email, Password: in.Password, Confirm: in.Confirm}
	if err := check(form); err != nil {
		return "", err
	}
	msg, err := m.backend.ConfirmPasswordReset(ctx, in.Token, in.Email, in.Password)
	if err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) && len(ve.Fields) > 0 {
			return "", err
		}
		var netErr *api.NetworkError
		if errors.As(err, &netErr) && !errors.Is(err, api.ErrNotFound) {
			return "", err
		}
		slog.Debug("password reset confirm rejected", "err", err)
		return "", &api.ValidationError{Message: resetFailedMessage}
	}
	if msg == "" {
		msg = PasswordUpdatedMessage
	}
	return msg, nil
}

// CheckAvailability reports whether username and email are unused.
func (m *Manager) CheckAvailability(ctx context.Context, username, email string) (*api.Availability, error) {
	return m.backend.CheckAvailability(ctx, username, email)
}

// ChangePassword validates the new password locally, changes it and
// refetches the user.
func (m *Manager) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := check(passwordForm{Current: current, Password: next, Confirm: confirm}); err != nil {
		return err
	}
	if err := m.backend.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	_, err := m.RefreshUser(ctx)
	return err
}

// UploadProfilePicture uploads the image at path and refetches the user.
func (m *Manager) UploadProfilePicture(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &api.ValidationError{Fields: map[string]string{"file": "file not found"}}
	}
	if err := m.backend.UploadProfilePicture(ctx, path); err != nil {
		return err
	}
	_, err = m.RefreshUser(ctx)
	return err
}

// SaveProfilePicture downloads the profile picture into dir as
// profile-<username> with an extension matching the image type, and returns
// the path written.
func (m *Manager) SaveProfilePicture(ctx context.Context, dir string) (string, error) {
	u := m.User()
	if u == nil || !u.Profile.HasProfilePic {
		return "", ErrNoProfilePicture
	}
	data, err := m.backend.ProfilePicture(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create picture directory: %w", err)
	}
	path := filepath.Join(dir, "profile-"+u.Username+mimetype.Detect(data).Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write profile picture: %w", err)
	}
	return path, nil
}

// RemoveProfilePicture deletes the profile picture and refetches the user.
func (m *Manager) RemoveProfilePicture(ctx context.Context) error {
	u := m.User()
	if u == nil || !u.Profile.HasProfilePic {
		return ErrNoProfilePicture
	}
	if err := m.backend.DeleteProfilePicture(ctx); err != nil {
		return err
	}
	_, err := m.RefreshUser(ctx)
	return err
}

func (m *Manager) establish(ctx context.Context, token string, user *api.User, rememberMe bool) {
	m.backend.SetToken(token)

	if err := m.durable.Set(ctx, TokenKey, token); err != nil {
		slog.Warn("persist token", "err", err)
	}
	if rememberMe {
		_ = m.volatile.Remove(ctx, TokenKey)
	} else if err := m.volatile.Set(ctx, TokenKey, token); err != nil {
		slog.Warn("persist session token", "err", err)
	}

	m.mu.Lock()
	m.token, m.user, m.status = token, user, StatusAuthenticated
	m.mu.Unlock()
}

func (m *Manager) clear(ctx context.Context) {
	for _, s := range []kv.Store{m.durable, m.volatile} {
		if err := s.Remove(ctx, TokenKey); err != nil {
			slog.Warn("remove token", "err", err)
		}
	}
	m.backend.SetToken("")
	m.setUnauthenticated()
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.token, m.user, m.status = "", nil, StatusUnauthenticated
	m.mu.Unlock()
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}
