package records

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidField = errors.New("invalid field")

const dateLayout = "2006-01-02"

type CreateStudentRequest struct {
	LoginCode             string     `validate:"required,max=50"`
	Email                 string     `validate:"omitempty,email,max=100"`
	Password              string     `validate:"required,min=6,bcryptmax"`
	FirstNames            string     `validate:"required,max=100"`
	LastNames             string     `validate:"required,max=100"`
	BirthDate             *time.Time `validate:"omitempty"`
	Gender                *string    `validate:"omitempty,max=20"`
	Address               *string    `validate:"omitempty,max=255"`
	Phone                 *string    `validate:"omitempty,max=20"`
	EmergencyContactName  *string    `validate:"omitempty,max=100"`
	EmergencyContactPhone *string    `validate:"omitempty,max=20"`
	SectionID             *int64     `validate:"omitempty,gt=0"`
}

type CreateTeacherRequest struct {
	LoginCode          string     `validate:"required,max=50"`
	Email              string     `validate:"omitempty,email,max=100"`
	Password           string     `validate:"required,min=6,bcryptmax"`
	FirstNames         string     `validate:"required,max=100"`
	LastNames          string     `validate:"required,max=100"`
	Specialty          *string    `validate:"omitempty,max=100"`
	AcademicTitle      *string    `validate:"omitempty,max=100"`
	HiredOn            *time.Time `validate:"omitempty"`
	Phone              *string    `validate:"omitempty,max=20"`
	InstitutionalEmail *string    `validate:"omitempty,email,max=100"`
}

func (req CreateStudentRequest) toNewPerson(photoURL *string) NewPerson {
	return NewPerson{
		Kind:      KindStudent,
		LoginCode: req.LoginCode,
		Email:     req.Email,
		Password:  req.Password,
		SectionID: req.SectionID,
		Student: &Student{
			FirstNames:            req.FirstNames,
			LastNames:             req.LastNames,
			BirthDate:             req.BirthDate,
			Gender:                req.Gender,
			Address:               req.Address,
			Phone:                 req.Phone,
			EmergencyContactName:  req.EmergencyContactName,
			EmergencyContactPhone: req.EmergencyContactPhone,
			PhotoURL:              photoURL,
		},
	}
}

func (req CreateTeacherRequest) toNewPerson(photoURL *string) NewPerson {
	return NewPerson{
		Kind:      KindTeacher,
		LoginCode: req.LoginCode,
		Email:     req.Email,
		Password:  req.Password,
		Teacher: &Teacher{
			FirstNames:         req.FirstNames,
			LastNames:          req.LastNames,
			Specialty:          req.Specialty,
			AcademicTitle:      req.AcademicTitle,
			HiredOn:            req.HiredOn,
			Phone:              req.Phone,
			InstitutionalEmail: req.InstitutionalEmail,
			PhotoURL:           photoURL,
		},
	}
}

// formReader collects typed values from a parsed multipart form and keeps
// the first conversion error.
type formReader struct {
	r   *http.Request
	err error
}

func (f *formReader) text(key string) string {
	return strings.TrimSpace(f.r.FormValue(key))
}

func (f *formReader) optional(key string) *string {
	v := f.text(key)
	if v == "" {
		return nil
	}
	return &v
}

func (f *formReader) date(key string) *time.Time {
	v := f.text(key)
	if v == "" || f.err != nil {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		f.err = fmt.Errorf("%w: %s must be a YYYY-MM-DD date", ErrInvalidField, key)
		return nil
	}
	return &t
}

func (f *formReader) id(key string) *int64 {
	v := f.text(key)
	if v == "" || f.err != nil {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f.err = fmt.Errorf("%w: %s must be a number", ErrInvalidField, key)
		return nil
	}
	return &n
}

func readStudentForm(r *http.Request) (CreateStudentRequest, error) {
	f := &formReader{r: r}
	req := CreateStudentRequest{
		LoginCode:             f.text("codigo_usuario"),
		Email:                 f.text("email"),
		Password:              r.FormValue("password"),
		FirstNames:            f.text("nombres"),
		LastNames:             f.text("apellidos"),
		BirthDate:             f.date("fecha_nacimiento"),
		Gender:                f.optional("genero"),
		Address:               f.optional("direccion"),
		Phone:                 f.optional("telefono"),
		EmergencyContactName:  f.optional("nombre_contacto_emergencia"),
		EmergencyContactPhone: f.optional("telefono_contacto_emergencia"),
		SectionID:             f.id("seccion_id"),
	}
	return req, f.err
}

func readTeacherForm(r *http.Request) (CreateTeacherRequest, error) {
	f := &formReader{r: r}
	req := CreateTeacherRequest{
		LoginCode:          f.text("codigo_usuario"),
		Email:              f.text("email"),
		Password:           r.FormValue("password"),
		FirstNames:         f.text("nombres"),
		LastNames:          f.text("apellidos"),
		Specialty:          f.optional("especialidad"),
		AcademicTitle:      f.optional("titulo_academico"),
		HiredOn:            f.date("fecha_contratacion"),
		Phone:              f.optional("telefono"),
		InstitutionalEmail: f.optional("email_institucional"),
	}
	return req, f.err
}
