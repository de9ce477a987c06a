package account

import (
	"time"

	"github.com/uptrace/bun"
)

// LoginCodeConstraint names the unique constraint on users.login_code.
const LoginCodeConstraint = "users_login_code_key"

// User is the persisted login account. login_code is unique across every role.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64      `bun:"id,pk,autoincrement" json:"id"`
	LoginCode    string     `bun:"login_code,notnull,unique:users_login_code_key" json:"codigo_usuario"`
	Email        string     `bun:"email" json:"email"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	Role         Role       `bun:"role,notnull" json:"tipo_usuario"`
	Status       Status     `bun:"status,notnull,default:'activo'" json:"estado"`
	LastAccessAt *time.Time `bun:"last_access_at" json:"ultimo_acceso,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"fecha_creacion"`
}

// Candidate is a user row joined with its role specific profile, as read by
// the login lookup.
type Candidate struct {
	ID           int64   `bun:"id"`
	LoginCode    string  `bun:"login_code"`
	Email        string  `bun:"email"`
	PasswordHash string  `bun:"password_hash"`
	Role         Role    `bun:"role"`
	Status       Status  `bun:"status"`
	StudentID    *int64  `bun:"student_id"`
	TeacherID    *int64  `bun:"teacher_id"`
	FirstNames   *string `bun:"first_names"`
	LastNames    *string `bun:"last_names"`
	PhotoURL     *string `bun:"photo_url"`
	Specialty    *string `bun:"specialty"`
}

// Principal builds the session snapshot for this candidate.
func (c *Candidate) Principal() Principal {
	p := Principal{
		ID:        c.ID,
		Code:      c.LoginCode,
		Role:      c.Role,
		Status:    c.Status,
		Email:     c.Email,
		PhotoURL:  c.PhotoURL,
		Specialty: c.Specialty,
		StudentID: c.StudentID,
		TeacherID: c.TeacherID,
	}

	p.FirstNames = "Administrador"
	if c.FirstNames != nil {
		p.FirstNames = *c.FirstNames
	}
	if c.LastNames != nil {
		p.LastNames = *c.LastNames
	}

	return p
}
