// Package schema lists the tables of the academic records database in
// creation order.
package schema

import (
	"context"

	"github.com/Natalia-54/sistema-academico-jfk/internal/academics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/db"
	"github.com/Natalia-54/sistema-academico-jfk/internal/records"

	"github.com/uptrace/bun"
)

func Tables() []db.Table {
	return []db.Table{
		{Model: (*account.User)(nil)},
		{Model: (*academics.GradeLevel)(nil)},
		{
			Model:       (*records.Teacher)(nil),
			ForeignKeys: []string{`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`},
		},
		{
			Model: (*academics.Section)(nil),
			ForeignKeys: []string{
				`("grade_level_id") REFERENCES "grade_levels" ("id")`,
				`("tutor_id") REFERENCES "teachers" ("id") ON DELETE SET NULL`,
			},
		},
		{
			Model:       (*records.Student)(nil),
			ForeignKeys: []string{`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`},
		},
		{
			Model: (*records.Enrollment)(nil),
			ForeignKeys: []string{
				`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`,
				`("section_id") REFERENCES "sections" ("id")`,
			},
		},
		{Model: (*academics.Subject)(nil)},
		{Model: (*academics.AcademicPeriod)(nil)},
		{Model: (*academics.EvaluationType)(nil)},
		{
			Model: (*academics.GradeRecord)(nil),
			ForeignKeys: []string{
				`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`,
				`("subject_id") REFERENCES "subjects" ("id")`,
				`("period_id") REFERENCES "academic_periods" ("id")`,
				`("evaluation_type_id") REFERENCES "evaluation_types" ("id")`,
				`("teacher_id") REFERENCES "teachers" ("id")`,
			},
		},
	}
}

// TableNames returns every table, dependents first, for truncation in tests.
func TableNames() []string {
	return []string{
		"grade_records", "evaluation_types", "academic_periods", "subjects",
		"student_sections", "students", "sections", "teachers", "grade_levels", "users",
	}
}

func Migrate(ctx context.Context, database bun.IDB) error {
	return db.RunMigrations(ctx, database, Tables()...)
}
