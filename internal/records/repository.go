package records

import (
	"context"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	// ListStudents returns every student with the section they are actively
	// enrolled in for schoolYear, if any.
	ListStudents(ctx context.Context, schoolYear int) ([]StudentListing, error)
	ListTeachers(ctx context.Context) ([]TeacherListing, error)
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

func (r *repository) ListStudents(ctx context.Context, schoolYear int) ([]StudentListing, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	students := []StudentListing{}
	err := r.db.NewSelect().
		Model(&students).
		ColumnExpr("e.*").
		ColumnExpr("u.login_code, u.email, u.status AS user_status").
		ColumnExpr("es.section_id, s.name AS section_name, g.name AS grade_name").
		Join("JOIN users AS u ON u.id = e.user_id").
		Join("LEFT JOIN student_sections AS es ON es.student_id = e.id AND es.school_year = ? AND es.status = ?", schoolYear, account.StatusActive).
		Join("LEFT JOIN sections AS s ON s.id = es.section_id").
		Join("LEFT JOIN grade_levels AS g ON g.id = s.grade_level_id").
		OrderExpr("e.last_names ASC, e.first_names ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *repository) ListTeachers(ctx context.Context) ([]TeacherListing, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	teachers := []TeacherListing{}
	err := r.db.NewSelect().
		Model(&teachers).
		ColumnExpr("pr.*").
		ColumnExpr("u.login_code, u.email, u.status AS user_status").
		Join("JOIN users AS u ON u.id = pr.user_id").
		OrderExpr("pr.last_names ASC, pr.first_names ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return teachers, nil
}
