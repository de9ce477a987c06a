package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/password"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type fakeAccounts struct {
	mu         sync.Mutex
	candidates []account.Candidate
	touched    map[int64]time.Time
	findErr    error
	touchErr   error
}

func newFakeAccounts(candidates ...account.Candidate) *fakeAccounts {
	return &fakeAccounts{candidates: candidates, touched: make(map[int64]time.Time)}
}

func (f *fakeAccounts) FindLoginCandidate(_ context.Context, role account.Role, identifier string) (*account.Candidate, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, c := range f.candidates {
		if c.Role != role || c.Status != account.StatusActive {
			continue
		}
		if c.LoginCode == identifier || (role != account.RoleStudent && c.Email == identifier) {
			found := c
			return &found, nil
		}
	}
	return nil, account.ErrNotFound
}

func (f *fakeAccounts) TouchLastAccess(_ context.Context, userID int64, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[userID] = at
	return nil
}

func (f *fakeAccounts) lastAccess(userID int64) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.touched[userID]
	return at, ok
}

func (f *fakeAccounts) GetByLoginCode(context.Context, string) (*account.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAccounts) Create(context.Context, *account.User) error {
	return errors.New("not implemented")
}

func (f *fakeAccounts) UpdatePassword(context.Context, int64, string) error {
	return errors.New("not implemented")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func mustHash(plaintext string) string {
	digest, err := password.Hash(plaintext)
	if err != nil {
		panic(err)
	}
	return digest
}

// One account per role, all with password pass123.
func seedCandidates() []account.Candidate {
	digest := mustHash("pass123")
	return []account.Candidate{
		{
			ID: 1, LoginCode: "S100", Email: "s100@jfk.edu", PasswordHash: digest,
			Role: account.RoleStudent, Status: account.StatusActive,
			StudentID: ptr(int64(10)), FirstNames: ptr("Lucía"), LastNames: ptr("Gómez"),
		},
		{
			ID: 2, LoginCode: "T200", Email: "t200@jfk.edu", PasswordHash: digest,
			Role: account.RoleTeacher, Status: account.StatusActive,
			TeacherID: ptr(int64(20)), FirstNames: ptr("Ana"), LastNames: ptr("Ruiz"), Specialty: ptr("Matemática"),
		},
		{
			ID: 3, LoginCode: "ADMIN", Email: "admin@jfk.edu", PasswordHash: digest,
			Role: account.RoleAdministrator, Status: account.StatusActive,
		},
		{
			ID: 4, LoginCode: "S999", Email: "s999@jfk.edu", PasswordHash: digest,
			Role: account.RoleStudent, Status: account.StatusInactive,
			StudentID: ptr(int64(99)), FirstNames: ptr("Inés"), LastNames: ptr("Paz"),
		},
	}
}
