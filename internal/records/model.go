package records

import (
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"

	"github.com/uptrace/bun"
)

type Kind string

const (
	KindStudent Kind = "estudiante"
	KindTeacher Kind = "profesor"
)

// Role is the account role created for this kind of person.
func (k Kind) Role() account.Role {
	if k == KindTeacher {
		return account.RoleTeacher
	}
	return account.RoleStudent
}

type Student struct {
	bun.BaseModel `bun:"table:students,alias:e"`

	ID                    int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID                int64      `bun:"user_id,notnull,unique" json:"usuario_id"`
	FirstNames            string     `bun:"first_names,notnull" json:"nombres"`
	LastNames             string     `bun:"last_names,notnull" json:"apellidos"`
	BirthDate             *time.Time `bun:"birth_date,type:date" json:"fecha_nacimiento"`
	Gender                *string    `bun:"gender" json:"genero"`
	Address               *string    `bun:"address" json:"direccion"`
	Phone                 *string    `bun:"phone" json:"telefono"`
	EmergencyContactName  *string    `bun:"emergency_contact_name" json:"nombre_contacto_emergencia"`
	EmergencyContactPhone *string    `bun:"emergency_contact_phone" json:"telefono_contacto_emergencia"`
	PhotoURL              *string    `bun:"photo_url" json:"foto_url"`
	EnrolledOn            time.Time  `bun:"enrolled_on,type:date,notnull,default:current_date" json:"fecha_inscripcion"`
}

type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:pr"`

	ID                 int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID             int64      `bun:"user_id,notnull,unique" json:"usuario_id"`
	FirstNames         string     `bun:"first_names,notnull" json:"nombres"`
	LastNames          string     `bun:"last_names,notnull" json:"apellidos"`
	Specialty          *string    `bun:"specialty" json:"especialidad"`
	AcademicTitle      *string    `bun:"academic_title" json:"titulo_academico"`
	HiredOn            *time.Time `bun:"hired_on,type:date" json:"fecha_contratacion"`
	Phone              *string    `bun:"phone" json:"telefono"`
	InstitutionalEmail *string    `bun:"institutional_email" json:"email_institucional"`
	PhotoURL           *string    `bun:"photo_url" json:"foto_url"`
}

// Enrollment places a student in a section for one school year. A student
// has at most one enrollment per year.
type Enrollment struct {
	bun.BaseModel `bun:"table:student_sections,alias:es"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID  int64     `bun:"student_id,notnull,unique:student_year" json:"estudiante_id"`
	SectionID  int64     `bun:"section_id,notnull" json:"seccion_id"`
	SchoolYear int       `bun:"school_year,notnull,unique:student_year" json:"ano_escolar"`
	AssignedOn time.Time `bun:"assigned_on,type:date,notnull,default:current_date" json:"fecha_asignacion"`
	Status     string    `bun:"status,notnull,default:'activo'" json:"estado"`
}

// StudentListing is a student row joined with its account and current
// enrollment.
type StudentListing struct {
	Student `bun:",extend"`

	LoginCode   string  `bun:"login_code" json:"codigo_usuario"`
	Email       string  `bun:"email" json:"email"`
	UserStatus  string  `bun:"user_status" json:"usuario_estado"`
	SectionID   *int64  `bun:"section_id" json:"seccion_id"`
	SectionName *string `bun:"section_name" json:"seccion_nombre"`
	GradeName   *string `bun:"grade_name" json:"grado_nombre"`
}

type TeacherListing struct {
	Teacher `bun:",extend"`

	LoginCode  string `bun:"login_code" json:"codigo_usuario"`
	Email      string `bun:"email" json:"email"`
	UserStatus string `bun:"user_status" json:"usuario_estado"`
}
