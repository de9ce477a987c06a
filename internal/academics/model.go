package academics

import (
	"time"

	"github.com/uptrace/bun"
)

const StatusActive = "activo"

type GradeLevel struct {
	bun.BaseModel `bun:"table:grade_levels,alias:g"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Name      string `bun:"name,notnull" json:"nombre"`
	SortOrder int    `bun:"sort_order,notnull,default:0" json:"orden"`
	Status    string `bun:"status,notnull,default:'activo'" json:"estado"`
}

type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	GradeLevelID int64  `bun:"grade_level_id,notnull" json:"grado_id"`
	Name         string `bun:"name,notnull" json:"nombre"`
	SchoolYear   int    `bun:"school_year,notnull" json:"ano_escolar"`
	TutorID      *int64 `bun:"tutor_id" json:"tutor_id"`
	Status       string `bun:"status,notnull,default:'activo'" json:"estado"`
}

// SectionSummary is a current-year section with its grade, tutor and the
// number of actively enrolled students.
type SectionSummary struct {
	ID             int64   `bun:"id" json:"id"`
	GradeLevelID   int64   `bun:"grade_level_id" json:"grado_id"`
	Name           string  `bun:"name" json:"nombre"`
	SchoolYear     int     `bun:"school_year" json:"ano_escolar"`
	TutorID        *int64  `bun:"tutor_id" json:"tutor_id"`
	Status         string  `bun:"status" json:"estado"`
	GradeName      string  `bun:"grade_name" json:"grado_nombre"`
	TutorFirstName *string `bun:"tutor_first_names" json:"tutor_nombres"`
	TutorLastName  *string `bun:"tutor_last_names" json:"tutor_apellidos"`
	TotalStudents  int     `bun:"total_students" json:"total_estudiantes"`
}

type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:m"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"nombre"`
}

type AcademicPeriod struct {
	bun.BaseModel `bun:"table:academic_periods,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Name      string `bun:"name,notnull" json:"nombre"`
	SortOrder int    `bun:"sort_order,notnull,default:0" json:"orden"`
}

type EvaluationType struct {
	bun.BaseModel `bun:"table:evaluation_types,alias:te"`

	ID     int64   `bun:"id,pk,autoincrement" json:"id"`
	Name   string  `bun:"name,notnull" json:"nombre"`
	Weight float64 `bun:"weight,notnull,default:0" json:"peso"`
}

// GradeRecord is one score given by a teacher. Rows are never updated.
type GradeRecord struct {
	bun.BaseModel `bun:"table:grade_records,alias:c"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID        int64     `bun:"student_id,notnull" json:"estudiante_id"`
	SubjectID        int64     `bun:"subject_id,notnull" json:"materia_id"`
	PeriodID         int64     `bun:"period_id,notnull" json:"periodo_id"`
	EvaluationTypeID int64     `bun:"evaluation_type_id,notnull" json:"tipo_evaluacion_id"`
	TeacherID        int64     `bun:"teacher_id,notnull" json:"profesor_id"`
	Score            float64   `bun:"score,notnull" json:"calificacion"`
	RecordedAt       time.Time `bun:"recorded_at,notnull,default:current_timestamp" json:"fecha_registro"`
}

// StudentGrade is a grade record as shown to the student who owns it.
type StudentGrade struct {
	Subject          string    `bun:"subject" json:"materia"`
	Score            float64   `bun:"score" json:"calificacion"`
	Period           string    `bun:"period" json:"periodo"`
	EvaluationType   string    `bun:"evaluation_type" json:"tipo_evaluacion"`
	Weight           float64   `bun:"weight" json:"peso"`
	TeacherFirstName string    `bun:"teacher_first_names" json:"profesor_nombres"`
	TeacherLastName  string    `bun:"teacher_last_names" json:"profesor_apellidos"`
	RecordedAt       time.Time `bun:"recorded_at" json:"fecha_registro"`
}

type Statistics struct {
	TotalStudents int `json:"totalEstudiantes"`
	TotalTeachers int `json:"totalProfesores"`
	TotalSections int `json:"totalSecciones"`
	SchoolYear    int `json:"anoEscolar"`
}
