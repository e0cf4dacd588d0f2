// AngelaMos | 2026
// entity.go

package course

import (
	"time"
)

type Course struct {
	ID           int64     `db:"id"            json:"id"`
	Title        string    `db:"title"         json:"title"`
	Description  string    `db:"description"   json:"description,omitempty"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	InstructorID int64     `db:"instructor_id" json:"instructorId"`
	CreatedAt    time.Time `db:"created_at"    json:"createdAt"`
}

type Lesson struct {
	ID       int64  `db:"id"        json:"id"`
	CourseID int64  `db:"course_id" json:"courseId"`
	Title    string `db:"title"     json:"title"`
	Content  string `db:"content"   json:"content,omitempty"`
	Position int    `db:"position"  json:"position"`
}
