// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// store is the persistence surface the service uses; *Repository satisfies
// it.
type store interface {
	Create(ctx context.Context, c *Course) (*Course, error)
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Course, *Instructor, error)
	List(ctx context.Context) ([]Course, []Instructor, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	InsertLesson(ctx context.Context, l *Lesson) (*Lesson, error)
	DeleteLessonsByCourse(ctx context.Context, courseID int64) error
	LessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error)
}

// InstructorProvider answers whether an account exists; the user service
// satisfies it.
type InstructorProvider interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	txr         core.TxRunner
	repo        store
	instructors InstructorProvider
	logger      *slog.Logger
}

func NewService(
	txr core.TxRunner,
	repo store,
	instructors InstructorProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		txr:         txr,
		repo:        repo,
		instructors: instructors,
		logger:      logger,
	}
}

// Create stores the course and its lessons in one unit of work. Lessons are
// re-sorted by position before attaching; caller-supplied positions are
// otherwise trusted.
func (s *Service) Create(
	ctx context.Context,
	req CreateRequest,
) (*Response, error) {
	if err := s.requireInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	var response *Response

	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.repo.Create(ctx, &Course{
			Title:        req.Title,
			Description:  req.Description,
			ThumbnailURL: req.ThumbnailURL,
			InstructorID: req.InstructorID,
		})
		if err != nil {
			return err
		}

		if err := s.attachLessons(ctx, created.ID, req.Lessons); err != nil {
			return err
		}

		response, err = s.detail(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course created",
		"course_id", response.ID,
		"instructor_id", req.InstructorID,
	)

	return response, nil
}

// Update applies the non-nil fields. A non-nil lesson list replaces the
// stored lessons wholesale.
func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateRequest,
) (*Response, error) {
	var response *Response

	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		current, _, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.ThumbnailURL != nil {
			current.ThumbnailURL = *req.ThumbnailURL
		}
		if req.InstructorID != nil {
			if err := s.requireInstructor(ctx, *req.InstructorID); err != nil {
				return err
			}
			current.InstructorID = *req.InstructorID
		}

		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}

		if req.Lessons != nil {
			if err := s.repo.DeleteLessonsByCourse(ctx, id); err != nil {
				return err
			}
			if err := s.attachLessons(ctx, id, *req.Lessons); err != nil {
				return err
			}
		}

		response, err = s.detail(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course updated", "course_id", id)

	return response, nil
}

// Delete removes the course and everything hanging off it. Deleting an
// absent course succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("course deleted", "course_id", id)

	return nil
}

func (s *Service) GetCourse(ctx context.Context, id int64) (*Response, error) {
	return s.detail(ctx, id)
}

// ListCourses returns course summaries, newest first. Lesson bodies stay out
// of the listing.
func (s *Service) ListCourses(ctx context.Context) ([]Response, error) {
	courses, instructors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]Response, len(courses))
	for i := range courses {
		responses[i] = *newResponse(&courses[i], &instructors[i])
	}

	return responses, nil
}

// AddLesson appends one lesson to an existing course.
func (s *Service) AddLesson(
	ctx context.Context,
	courseID int64,
	req LessonRequest,
) (*LessonResponse, error) {
	exists, err := s.repo.ExistsByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NotFoundError("course")
	}

	lesson, err := s.repo.InsertLesson(ctx, &Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson added",
		"course_id", courseID,
		"lesson_id", lesson.ID,
	)

	return newLessonResponse(lesson), nil
}

// ExistsByID reports whether the course exists. Enrollment checks use this.
func (s *Service) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

func (s *Service) requireInstructor(
	ctx context.Context,
	instructorID int64,
) error {
	exists, err := s.instructors.ExistsByID(ctx, instructorID)
	if err != nil {
		return err
	}
	if !exists {
		return core.NotFoundError("instructor")
	}
	return nil
}

func (s *Service) attachLessons(
	ctx context.Context,
	courseID int64,
	lessons []LessonRequest,
) error {
	sorted := slices.Clone(lessons)
	slices.SortStableFunc(sorted, func(a, b LessonRequest) int {
		return a.Position - b.Position
	})

	for _, req := range sorted {
		_, err := s.repo.InsertLesson(ctx, &Lesson{
			CourseID: courseID,
			Title:    req.Title,
			Content:  req.Content,
			Position: req.Position,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) detail(ctx context.Context, id int64) (*Response, error) {
	c, instructor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.LessonsByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	response := newResponse(c, instructor)
	response.Lessons = make([]LessonResponse, len(lessons))
	for i := range lessons {
		response.Lessons[i] = *newLessonResponse(&lessons[i])
	}

	return response, nil
}
