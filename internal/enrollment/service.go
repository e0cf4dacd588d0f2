// AngelaMos | 2026
// service.go

package enrollment

import (
	"context"
	"log/slog"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// store is the persistence surface the service uses; *Repository satisfies
// it.
type store interface {
	Create(ctx context.Context, e *Enrollment) (*Enrollment, error)
	GetByID(ctx context.Context, id int64) (*Response, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ExistsPair(ctx context.Context, studentID, courseID int64) (bool, error)
	ListByStudent(ctx context.Context, studentID int64) ([]Response, error)
	ListByCourse(ctx context.Context, courseID int64) ([]Response, error)
}

// CourseProvider and StudentProvider answer existence checks; the course and
// user services satisfy them.
type CourseProvider interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type StudentProvider interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	txr      core.TxRunner
	repo     store
	courses  CourseProvider
	students StudentProvider
	logger   *slog.Logger
}

func NewService(
	txr core.TxRunner,
	repo store,
	courses CourseProvider,
	students StudentProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		txr:      txr,
		repo:     repo,
		courses:  courses,
		students: students,
		logger:   logger,
	}
}

// Enroll records a student in a course. The checks and the insert share one
// unit of work; the unique pair constraint settles concurrent duplicates.
func (s *Service) Enroll(
	ctx context.Context,
	req EnrollRequest,
) (*Response, error) {
	var response *Response

	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.courses.ExistsByID(ctx, req.CourseID)
		if err != nil {
			return err
		}
		if !exists {
			return core.NotFoundError("course")
		}

		exists, err = s.students.ExistsByID(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if !exists {
			return core.NotFoundError("student")
		}

		enrolled, err := s.repo.ExistsPair(ctx, req.StudentID, req.CourseID)
		if err != nil {
			return err
		}
		if enrolled {
			return core.ConflictError(
				"student is already enrolled in this course",
			)
		}

		created, err := s.repo.Create(ctx, &Enrollment{
			CourseID:  req.CourseID,
			StudentID: req.StudentID,
			Status:    StatusPending,
		})
		if err != nil {
			return err
		}

		response, err = s.repo.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled",
		"enrollment_id", response.ID,
		"course_id", req.CourseID,
		"student_id", req.StudentID,
	)

	return response, nil
}

// UpdateStatus sets the enrollment to any known status.
func (s *Service) UpdateStatus(
	ctx context.Context,
	id int64,
	req StatusUpdateRequest,
) (*Response, error) {
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment status updated",
		"enrollment_id", id,
		"status", req.Status,
	)

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByStudent(
	ctx context.Context,
	studentID int64,
) ([]Response, error) {
	exists, err := s.students.ExistsByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NotFoundError("student")
	}

	return s.repo.ListByStudent(ctx, studentID)
}

func (s *Service) ListByCourse(
	ctx context.Context,
	courseID int64,
) ([]Response, error) {
	exists, err := s.courses.ExistsByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NotFoundError("course")
	}

	return s.repo.ListByCourse(ctx, courseID)
}
