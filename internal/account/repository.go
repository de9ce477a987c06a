package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("account not found")

type Repository interface {
	// FindLoginCandidate returns the active account of the given role matching
	// identifier. Students match by login code only; teachers and
	// administrators by login code or email.
	FindLoginCandidate(ctx context.Context, role Role, identifier string) (*Candidate, error)
	TouchLastAccess(ctx context.Context, userID int64, at time.Time) error
	GetByLoginCode(ctx context.Context, code string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID int64, digest string) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewRepository(db bun.IDB, m *metrics.Metrics, timeout time.Duration) Repository {
	return &repository{
		db:      db,
		metrics: m,
		timeout: timeout,
	}
}

func (r *repository) FindLoginCandidate(ctx context.Context, role Role, identifier string) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	q := r.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id, u.login_code, u.email, u.password_hash, u.role, u.status")

	switch role {
	case RoleStudent:
		q = q.ColumnExpr("s.id AS student_id, s.first_names, s.last_names, s.photo_url").
			Join("JOIN students AS s ON s.user_id = u.id").
			Where("u.login_code = ?", identifier)
	case RoleTeacher:
		q = q.ColumnExpr("t.id AS teacher_id, t.first_names, t.last_names, t.photo_url, t.specialty").
			Join("JOIN teachers AS t ON t.user_id = u.id").
			Where("(u.login_code = ? OR u.email = ?)", identifier, identifier)
	default:
		q = q.Where("(u.login_code = ? OR u.email = ?)", identifier, identifier)
	}

	candidate := new(Candidate)
	err := q.
		Where("u.role = ?", role).
		Where("u.status = ?", StatusActive).
		OrderExpr("u.id ASC").
		Limit(1).
		Scan(ctx, candidate)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return candidate, nil
}

func (r *repository) TouchLastAccess(ctx context.Context, userID int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("last_access_at = ?", at).
		Where("id = ?", userID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	return err
}

func (r *repository) GetByLoginCode(ctx context.Context, code string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("login_code = ?", code).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	return err
}

func (r *repository) UpdatePassword(ctx context.Context, userID int64, digest string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", digest).
		Where("id = ?", userID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
