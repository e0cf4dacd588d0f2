// AngelaMos | 2026
// entity.go

package enrollment

import (
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

type Enrollment struct {
	ID         int64     `db:"id"          json:"id"`
	CourseID   int64     `db:"course_id"   json:"courseId"`
	StudentID  int64     `db:"student_id"  json:"studentId"`
	Status     string    `db:"status"      json:"status"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
}
