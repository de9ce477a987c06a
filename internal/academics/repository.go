package academics

import (
	"context"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	ActiveGradeLevels(ctx context.Context) ([]GradeLevel, error)
	CurrentSections(ctx context.Context, schoolYear int) ([]SectionSummary, error)
	GradesForStudent(ctx context.Context, studentID int64) ([]StudentGrade, error)
	Statistics(ctx context.Context, schoolYear int) (*Statistics, error)
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

func (r *repository) ActiveGradeLevels(ctx context.Context) ([]GradeLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	levels := []GradeLevel{}
	err := r.db.NewSelect().
		Model(&levels).
		Where("status = ?", StatusActive).
		Order("sort_order").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "grade_levels", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) CurrentSections(ctx context.Context, schoolYear int) ([]SectionSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	sections := []SectionSummary{}
	err := r.db.NewSelect().
		TableExpr("sections AS s").
		ColumnExpr("s.id, s.grade_level_id, s.name, s.school_year, s.tutor_id, s.status").
		ColumnExpr("g.name AS grade_name").
		ColumnExpr("t.first_names AS tutor_first_names, t.last_names AS tutor_last_names").
		ColumnExpr("(SELECT COUNT(*) FROM student_sections AS es WHERE es.section_id = s.id AND es.status = ?) AS total_students", StatusActive).
		Join("JOIN grade_levels AS g ON g.id = s.grade_level_id").
		Join("LEFT JOIN teachers AS t ON t.id = s.tutor_id").
		Where("s.status = ?", StatusActive).
		Where("s.school_year = ?", schoolYear).
		OrderExpr("g.sort_order ASC, s.name ASC").
		Scan(ctx, &sections)

	r.metrics.Database.RecordQuery(ctx, "select", "sections", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *repository) GradesForStudent(ctx context.Context, studentID int64) ([]StudentGrade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	grades := []StudentGrade{}
	err := r.db.NewSelect().
		TableExpr("grade_records AS c").
		ColumnExpr("m.name AS subject, c.score, p.name AS period").
		ColumnExpr("te.name AS evaluation_type, te.weight").
		ColumnExpr("pr.first_names AS teacher_first_names, pr.last_names AS teacher_last_names").
		ColumnExpr("c.recorded_at").
		Join("JOIN subjects AS m ON m.id = c.subject_id").
		Join("JOIN academic_periods AS p ON p.id = c.period_id").
		Join("JOIN evaluation_types AS te ON te.id = c.evaluation_type_id").
		Join("JOIN teachers AS pr ON pr.id = c.teacher_id").
		Where("c.student_id = ?", studentID).
		OrderExpr("p.sort_order ASC, m.name ASC").
		Scan(ctx, &grades)

	r.metrics.Database.RecordQuery(ctx, "select", "grade_records", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return grades, nil
}

// Statistics counts active students and teachers and the active sections of
// schoolYear.
func (r *repository) Statistics(ctx context.Context, schoolYear int) (*Statistics, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	stats := &Statistics{SchoolYear: schoolYear}
	err := r.db.NewSelect().
		ColumnExpr("(SELECT COUNT(*) FROM students AS e JOIN users AS u ON u.id = e.user_id WHERE u.status = ?) AS total_students", StatusActive).
		ColumnExpr("(SELECT COUNT(*) FROM teachers AS pr JOIN users AS u ON u.id = pr.user_id WHERE u.status = ?) AS total_teachers", StatusActive).
		ColumnExpr("(SELECT COUNT(*) FROM sections AS s WHERE s.status = ? AND s.school_year = ?) AS total_sections", StatusActive, schoolYear).
		Scan(ctx, &stats.TotalStudents, &stats.TotalTeachers, &stats.TotalSections)

	r.metrics.Database.RecordQuery(ctx, "select", "statistics", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return stats, nil
}
