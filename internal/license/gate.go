// Package license gates certificate export behind a license on the user's
// profile.
package license

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/abhisek/learnhub/internal/api"
)

// Kind is the gate's state.
type Kind int

const (
	KindLoading Kind = iota
	KindUnlocked
	KindLocked
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindUnlocked:
		return "unlocked"
	case KindLocked:
		return "locked"
	case KindError:
		return "error"
	}
	return "unknown"
}

// State is an immutable gate snapshot.
type State struct {
	Kind Kind
	// PendingRequest and PendingCode are set while Locked.
	PendingRequest bool
	PendingCode    string
	// Message is the error text in KindError, or the backend's confirmation
	// after a license request.
	Message string
}

// Unlocked reports whether certificates may be viewed and exported.
func (s State) Unlocked() bool { return s.Kind == KindUnlocked }

// Backend is the subset of the REST client the gate needs.
type Backend interface {
	LicenseStatus(ctx context.Context) (*api.LicenseStatus, error)
	RequestLicense(ctx context.Context) (string, error)
	RedeemLicense(ctx context.Context, code string) (string, error)
	CertificateStatus(ctx context.Context) ([]api.SubjectEligibility, error)
	Certificate(ctx context.Context, subjectID int64) (*api.CertificateMetadata, error)
	DownloadCertificate(ctx context.Context, subjectID int64) ([]byte, error)
}

// UserRefresher refetches the current user after a redeem.
type UserRefresher interface {
	RefreshUser(ctx context.Context) (*api.User, error)
}

var errLicenseRequired = &api.NotEligibleError{Reason: "a license is required"}

// Gate is safe for concurrent use.
type Gate struct {
	backend Backend
	users   UserRefresher

	mu    sync.Mutex
	state State
}

// NewGate creates a Gate in KindLoading.
func NewGate(backend Backend, users UserRefresher) *Gate {
	return &Gate{backend: backend, users: users}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) set(s State) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	return s
}

// Evaluate decides the gate for user. A license on the profile unlocks
// without asking the backend.
func (g *Gate) Evaluate(ctx context.Context, user *api.User) State {
	if user.HasLicense() {
		return g.set(State{Kind: KindUnlocked})
	}
	g.set(State{Kind: KindLoading})

	status, err := g.backend.LicenseStatus(ctx)
	if err != nil {
		return g.set(State{Kind: KindError, Message: api.Message(err)})
	}
	if status.HasLicense {
		return g.set(State{Kind: KindUnlocked})
	}
	return g.set(State{
		Kind:           KindLocked,
		PendingRequest: status.PendingRequest,
		PendingCode:    status.PendingCode,
	})
}

// RequestLicense asks the backend to issue a license code. Repeating it
// resends the code.
func (g *Gate) RequestLicense(ctx context.Context) (State, error) {
	if st := g.State(); st.Unlocked() {
		return st, nil
	}
	msg, err := g.backend.RequestLicense(ctx)
	if err != nil {
		return g.State(), err
	}
	st := g.State()
	return g.set(State{
		Kind:           KindLocked,
		PendingRequest: true,
		PendingCode:    st.PendingCode,
		Message:        msg,
	}), nil
}

// Redeem applies a license code, refreshes the user and re-evaluates.
func (g *Gate) Redeem(ctx context.Context, code string) (State, error) {
	if st := g.State(); st.Unlocked() {
		return st, nil
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return g.State(), &api.ValidationError{Fields: map[string]string{"code": "is required"}}
	}
	if _, err := g.backend.RedeemLicense(ctx, code); err != nil {
		return g.State(), err
	}
	user, err := g.users.RefreshUser(ctx)
	if err != nil {
		return g.State(), fmt.Errorf("refresh user: %w", err)
	}
	if user == nil {
		return g.set(State{Kind: KindError, Message: "Your session has ended. Please log in again."}), nil
	}
	return g.Evaluate(ctx, user), nil
}

// Eligibility lists per-subject certificate eligibility.
func (g *Gate) Eligibility(ctx context.Context) ([]api.SubjectEligibility, error) {
	if !g.State().Unlocked() {
		return nil, errLicenseRequired
	}
	return g.backend.CertificateStatus(ctx)
}

// Certificate returns the certificate record for an eligible subject.
func (g *Gate) Certificate(ctx context.Context, entry api.SubjectEligibility) (*api.CertificateMetadata, error) {
	if !g.State().Unlocked() {
		return nil, errLicenseRequired
	}
	if !entry.Eligible {
		return nil, &api.NotEligibleError{Reason: fmt.Sprintf(
			"complete every course in %s first (%d/%d done)",
			entry.SubjectName, entry.CompletedCourses, entry.TotalCourses)}
	}
	return g.backend.Certificate(ctx, entry.SubjectID)
}

// Export downloads the rendered certificate and writes it into dir. It
// returns the written path.
func (g *Gate) Export(ctx context.Context, meta *api.CertificateMetadata, dir string) (string, error) {
	if !g.State().Unlocked() {
		return "", errLicenseRequired
	}
	if meta == nil {
		return "", errors.New("no certificate selected")
	}
	data, err := g.backend.DownloadCertificate(ctx, meta.SubjectID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(meta))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write certificate: %w", err)
	}
	return path, nil
}

// FileName is certificate-<subject>-<serial>.pdf. A record without a serial
// number gets a random suffix so exports never overwrite each other.
func FileName(meta *api.CertificateMetadata) string {
	serial := slug(meta.SerialNumber)
	if serial == "" {
		serial = uuid.NewString()[:8]
	}
	subject := slug(meta.SubjectName)
	if subject == "" {
		subject = fmt.Sprintf("subject%d", meta.SubjectID)
	}
	return fmt.Sprintf("certificate-%s-%s.pdf", subject, serial)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
