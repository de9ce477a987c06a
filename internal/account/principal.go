package account

import (
	"errors"
	"fmt"
)

var ErrInvalidPrincipal = errors.New("invalid principal")

// Principal is the authenticated actor attached to a session. It is derived
// from store rows at login and never persisted itself.
type Principal struct {
	ID         int64   `json:"id"`
	Code       string  `json:"codigo"`
	Role       Role    `json:"tipo"`
	Status     Status  `json:"estado"`
	FirstNames string  `json:"nombres"`
	LastNames  string  `json:"apellidos"`
	Email      string  `json:"email"`
	PhotoURL   *string `json:"foto_url"`
	Specialty  *string `json:"especialidad"`
	StudentID  *int64  `json:"estudiante_id,omitempty"`
	TeacherID  *int64  `json:"profesor_id,omitempty"`
}

// Validate checks the role/profile invariant: students carry a student
// profile id, teachers a teacher profile id, administrators neither.
func (p Principal) Validate() error {
	if _, err := ParseRole(string(p.Role)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}

	switch p.Role {
	case RoleStudent:
		if p.StudentID == nil || p.TeacherID != nil {
			return fmt.Errorf("%w: student without student profile", ErrInvalidPrincipal)
		}
	case RoleTeacher:
		if p.TeacherID == nil || p.StudentID != nil {
			return fmt.Errorf("%w: teacher without teacher profile", ErrInvalidPrincipal)
		}
	case RoleAdministrator:
		if p.StudentID != nil || p.TeacherID != nil {
			return fmt.Errorf("%w: administrator with a profile", ErrInvalidPrincipal)
		}
	}

	return nil
}

func (p Principal) DisplayName() string {
	if p.LastNames == "" {
		return p.FirstNames
	}
	return p.FirstNames + " " + p.LastNames
}
