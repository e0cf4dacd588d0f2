// AngelaMos | 2026
// dto.go

package course

import (
	"time"
)

// Instructor is the public slice of the account that teaches a course.
type Instructor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type LessonRequest struct {
	Title    string `json:"title"    validate:"required,max=200"`
	Content  string `json:"content"  validate:"omitempty,max=10000"`
	Position int    `json:"position" validate:"gte=0"`
}

type CreateRequest struct {
	Title        string          `json:"title"        validate:"required,max=200"`
	Description  string          `json:"description"  validate:"omitempty,max=2000"`
	ThumbnailURL string          `json:"thumbnailUrl" validate:"omitempty,max=500,url"`
	InstructorID int64           `json:"instructorId" validate:"required"`
	Lessons      []LessonRequest `json:"lessons"      validate:"omitempty,dive"`
}

// UpdateRequest applies partially: nil fields keep their stored value. A
// non-nil Lessons replaces the whole lesson list.
type UpdateRequest struct {
	Title        *string          `json:"title"        validate:"omitempty,max=200"`
	Description  *string          `json:"description"  validate:"omitempty,max=2000"`
	ThumbnailURL *string          `json:"thumbnailUrl" validate:"omitempty,max=500,url"`
	InstructorID *int64           `json:"instructorId" validate:"omitempty"`
	Lessons      *[]LessonRequest `json:"lessons"      validate:"omitempty,dive"`
}

type LessonResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Position int    `json:"position"`
}

// Response carries a course with its instructor. Lessons are present on
// detail reads only, sorted by position.
type Response struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	ThumbnailURL string           `json:"thumbnailUrl,omitempty"`
	Instructor   Instructor       `json:"instructor"`
	CreatedAt    time.Time        `json:"createdAt"`
	Lessons      []LessonResponse `json:"lessons,omitempty"`
}

func newResponse(c *Course, instructor *Instructor) *Response {
	return &Response{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		ThumbnailURL: c.ThumbnailURL,
		Instructor:   *instructor,
		CreatedAt:    c.CreatedAt,
	}
}

func newLessonResponse(l *Lesson) *LessonResponse {
	return &LessonResponse{
		ID:       l.ID,
		Title:    l.Title,
		Content:  l.Content,
		Position: l.Position,
	}
}
