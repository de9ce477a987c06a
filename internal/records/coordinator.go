package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/db"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/password"

	"github.com/uptrace/bun"
)

var ErrDuplicateLoginCode = errors.New("duplicate login code")

// NewPerson is everything needed to create an account with its profile.
// Exactly one of Student and Teacher is set, matching Kind.
type NewPerson struct {
	Kind      Kind
	LoginCode string
	Email     string
	Password  string
	Student   *Student
	Teacher   *Teacher
	SectionID *int64
}

type Created struct {
	UserID       int64
	ProfileID    int64
	EnrollmentID *int64
}

// Coordinator writes an account, its profile and the optional enrollment as
// one transaction.
type Coordinator struct {
	db      *bun.DB
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewCoordinator(database *bun.DB, m *metrics.Metrics, timeout time.Duration) *Coordinator {
	return &Coordinator{
		db:      database,
		metrics: m,
		timeout: timeout,
		now:     time.Now,
	}
}

// CreatePerson either commits every row or none. A login code that is
// already taken, including one taken by a concurrent call, yields
// ErrDuplicateLoginCode.
func (c *Coordinator) CreatePerson(ctx context.Context, p NewPerson) (*Created, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var created Created
	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		exists, err := tx.NewSelect().
			Model((*account.User)(nil)).
			Where("login_code = ?", p.LoginCode).
			Exists(ctx)
		c.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("check login code: %w", err)
		}
		if exists {
			return ErrDuplicateLoginCode
		}

		digest, err := password.Hash(p.Password)
		if err != nil {
			return err
		}

		user := &account.User{
			LoginCode:    p.LoginCode,
			Email:        p.Email,
			PasswordHash: digest,
			Role:         p.Kind.Role(),
			Status:       account.StatusActive,
		}
		start = time.Now()
		_, err = tx.NewInsert().Model(user).Returning("id").Exec(ctx)
		c.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		created.UserID = user.ID

		switch p.Kind {
		case KindStudent:
			return c.insertStudent(ctx, tx, user.ID, p, &created)
		default:
			return c.insertTeacher(ctx, tx, user.ID, p, &created)
		}
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateLoginCode) && db.IsUniqueViolationOn(err, account.LoginCodeConstraint) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateLoginCode, err)
		}
		return nil, err
	}

	return &created, nil
}

func (c *Coordinator) insertStudent(ctx context.Context, tx bun.Tx, userID int64, p NewPerson, created *Created) error {
	profile := *p.Student
	profile.UserID = userID

	start := time.Now()
	_, err := tx.NewInsert().Model(&profile).Returning("id").Exec(ctx)
	c.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	created.ProfileID = profile.ID

	if p.SectionID == nil {
		return nil
	}

	enrollment := &Enrollment{
		StudentID:  profile.ID,
		SectionID:  *p.SectionID,
		SchoolYear: c.now().Year(),
		Status:     account.StatusActive.String(),
	}
	start = time.Now()
	_, err = tx.NewInsert().Model(enrollment).Returning("id").Exec(ctx)
	c.metrics.Database.RecordQuery(ctx, "insert", "student_sections", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	created.EnrollmentID = &enrollment.ID

	return nil
}

func (c *Coordinator) insertTeacher(ctx context.Context, tx bun.Tx, userID int64, p NewPerson, created *Created) error {
	profile := *p.Teacher
	profile.UserID = userID

	start := time.Now()
	_, err := tx.NewInsert().Model(&profile).Returning("id").Exec(ctx)
	c.metrics.Database.RecordQuery(ctx, "insert", "teachers", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	created.ProfileID = profile.ID

	return nil
}

func (p NewPerson) check() error {
	switch p.Kind {
	case KindStudent:
		if p.Student == nil || p.Teacher != nil {
			return errors.New("student creation requires a student profile only")
		}
	case KindTeacher:
		if p.Teacher == nil || p.Student != nil || p.SectionID != nil {
			return errors.New("teacher creation requires a teacher profile only")
		}
	default:
		return fmt.Errorf("unknown person kind %q", p.Kind)
	}
	return nil
}
