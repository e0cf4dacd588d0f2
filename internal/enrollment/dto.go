// AngelaMos | 2026
// dto.go

package enrollment

import (
	"time"
)

type EnrollRequest struct {
	CourseID  int64 `json:"courseId"  validate:"required"`
	StudentID int64 `json:"studentId" validate:"required"`
}

// StatusUpdateRequest accepts any known status; there are no transition
// restrictions.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACTIVE COMPLETED CANCELLED"`
}

type CourseSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type StudentSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Response struct {
	ID         int64          `json:"id"`
	Course     CourseSummary  `json:"course"`
	Student    StudentSummary `json:"student"`
	Status     string         `json:"status"`
	EnrolledAt time.Time      `json:"enrolledAt"`
}
