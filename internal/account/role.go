package account

import (
	"errors"
	"fmt"
)

// Role is the closed set of actors known to the system. The values are the
// strings stored in users.role.
type Role string

const (
	RoleStudent       Role = "estudiante"
	RoleTeacher       Role = "profesor"
	RoleAdministrator Role = "administrador"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdministrator:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RoleFromHint maps the login form's userType to a role: "student",
// "teacher", anything else is treated as administrator.
func RoleFromHint(hint string) Role {
	switch hint {
	case "student":
		return RoleStudent
	case "teacher":
		return RoleTeacher
	default:
		return RoleAdministrator
	}
}

// HomePage is where a freshly logged in user of this role is sent.
func (r Role) HomePage() string {
	switch r {
	case RoleStudent:
		return "/notas-estudiante.html"
	case RoleTeacher:
		return "/panel-profesor.html"
	default:
		return "/admin.html"
	}
}

func (r Role) String() string {
	return string(r)
}

type Status string

const (
	StatusActive   Status = "activo"
	StatusInactive Status = "inactivo"
)

func (s Status) String() string {
	return string(s)
}
