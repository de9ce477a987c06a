package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/password"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"
)

var (
	ErrAccountNotFound = errors.New("account not found or inactive")
	ErrBadCredential   = errors.New("incorrect password")
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type LoginResult struct {
	Token     string
	Redirect  string
	Principal account.Principal
}

type Service struct {
	accounts  account.Repository
	sessions  session.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(accounts account.Repository, sessions session.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		sessions:  sessions,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Login authenticates req against the account of the hinted role and opens a
// session for it. The redirect depends on the hint alone.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	role := account.RoleFromHint(req.UserType)

	candidate, err := s.accounts.FindLoginCandidate(ctx, role, req.Username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.metrics.RecordLogin(ctx, role.String(), false)
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find login candidate: %w", err)
	}

	if !password.Verify(req.Password, candidate.PasswordHash) {
		s.metrics.RecordLogin(ctx, role.String(), false)
		return nil, ErrBadCredential
	}

	if err := s.accounts.TouchLastAccess(ctx, candidate.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last access", "user_id", candidate.ID, "error", err)
	}

	principal := candidate.Principal()
	if err := principal.Validate(); err != nil {
		return nil, err
	}

	token, err := s.sessions.Create(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.RecordLogin(ctx, role.String(), true)
	s.metrics.RecordSessionCreated(ctx)
	s.publish(ctx, events.New(events.TypeUserLoggedIn, map[string]any{
		"user_id": principal.ID,
		"role":    principal.Role.String(),
	}))

	return &LoginResult{
		Token:     token,
		Redirect:  role.HomePage(),
		Principal: principal,
	}, nil
}

// Logout destroys the session behind token. An empty or unknown token is
// not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	s.metrics.RecordSessionDestroyed(ctx)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
	}
}
