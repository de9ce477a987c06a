package records

import (
	"context"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
)

// Creator is the transactional write path used by Service.
type Creator interface {
	CreatePerson(ctx context.Context, p NewPerson) (*Created, error)
}

// PhotoStore keeps uploaded profile photos.
type PhotoStore interface {
	Save(header *multipart.FileHeader) (string, error)
	Remove(ref string) error
}

type Service struct {
	creator   Creator
	repo      Repository
	photos    PhotoStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(creator Creator, repo Repository, photos PhotoStore, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		creator:   creator,
		repo:      repo,
		photos:    photos,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListStudents(ctx context.Context) ([]StudentListing, error) {
	return s.repo.ListStudents(ctx, s.now().Year())
}

func (s *Service) ListTeachers(ctx context.Context) ([]TeacherListing, error) {
	return s.repo.ListTeachers(ctx)
}

func (s *Service) CreateStudent(ctx context.Context, req CreateStudentRequest, photo *multipart.FileHeader) (*Created, error) {
	photoURL, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, req.toNewPerson(photoURL), photoURL)
}

func (s *Service) CreateTeacher(ctx context.Context, req CreateTeacherRequest, photo *multipart.FileHeader) (*Created, error) {
	photoURL, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, req.toNewPerson(photoURL), photoURL)
}

func (s *Service) savePhoto(photo *multipart.FileHeader) (*string, error) {
	if photo == nil {
		return nil, nil
	}
	ref, err := s.photos.Save(photo)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// create runs the transaction and removes the stored photo when it fails, so
// a rejected request leaves no file behind.
func (s *Service) create(ctx context.Context, p NewPerson, photoURL *string) (*Created, error) {
	created, err := s.creator.CreatePerson(ctx, p)
	if err != nil {
		if photoURL != nil {
			if rmErr := s.photos.Remove(*photoURL); rmErr != nil {
				s.logger.WarnContext(ctx, "failed to remove orphaned photo", "photo", *photoURL, "error", rmErr)
			}
		}
		return nil, err
	}

	s.metrics.RecordPersonCreated(ctx, string(p.Kind))
	s.logger.InfoContext(ctx, "person created",
		"kind", p.Kind,
		"login_code", p.LoginCode,
		"user_id", created.UserID,
	)

	if s.publisher != nil {
		event := events.New(events.TypePersonCreated, map[string]any{
			"kind":       string(p.Kind),
			"user_id":    created.UserID,
			"login_code": p.LoginCode,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
		}
	}

	return created, nil
}
