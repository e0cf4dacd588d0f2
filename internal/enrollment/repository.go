// AngelaMos | 2026
// repository.go

package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// enrollmentRow joins the enrollment with its course title and the student's
// public fields.
type enrollmentRow struct {
	Enrollment
	CourseTitle      string `db:"course_title"`
	StudentFirstName string `db:"student_first_name"`
	StudentLastName  string `db:"student_last_name"`
	StudentEmail     string `db:"student_email"`
}

const enrollmentColumns = `
	e.id, e.course_id, e.student_id, e.status, e.enrolled_at,
	c.title      AS course_title,
	u.first_name AS student_first_name,
	u.last_name  AS student_last_name,
	u.email      AS student_email`

const enrollmentJoins = `
	FROM enrollments e
	JOIN courses c ON c.id = e.course_id
	JOIN users u   ON u.id = e.student_id`

type Repository struct {
	db *core.Database
}

func NewRepository(db *core.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts the enrollment. The unique (student_id, course_id) index is
// the last word on duplicates; races past the application check land here as
// Conflict.
func (r *Repository) Create(
	ctx context.Context,
	e *Enrollment,
) (*Enrollment, error) {
	query := `
		INSERT INTO enrollments (course_id, student_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, enrolled_at`

	err := r.db.Querier(ctx).QueryRowxContext(
		ctx,
		query,
		e.CourseID,
		e.StudentID,
		e.Status,
	).Scan(&e.ID, &e.EnrolledAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return nil, core.ConflictError(
				"student is already enrolled in this course",
			)
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	return e, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Response, error) {
	var row enrollmentRow

	query := `SELECT ` + enrollmentColumns + enrollmentJoins + `
		WHERE e.id = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("enrollment")
		}
		return nil, fmt.Errorf("select enrollment: %w", err)
	}

	return row.response(), nil
}

func (r *Repository) UpdateStatus(
	ctx context.Context,
	id int64,
	status string,
) error {
	query := `UPDATE enrollments SET status = $1 WHERE id = $2`

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundError("enrollment")
	}

	return nil
}

func (r *Repository) ExistsPair(
	ctx context.Context,
	studentID, courseID int64,
) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2
		)`

	err := r.db.Querier(ctx).GetContext(ctx, &exists, query, studentID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}

	return exists, nil
}

func (r *Repository) ListByStudent(
	ctx context.Context,
	studentID int64,
) ([]Response, error) {
	rows := []enrollmentRow{}

	query := `SELECT ` + enrollmentColumns + enrollmentJoins + `
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC`

	err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}

	return responses(rows), nil
}

func (r *Repository) ListByCourse(
	ctx context.Context,
	courseID int64,
) ([]Response, error) {
	rows := []enrollmentRow{}

	query := `SELECT ` + enrollmentColumns + enrollmentJoins + `
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC`

	err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments by course: %w", err)
	}

	return responses(rows), nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM enrollments`

	if err := r.db.Querier(ctx).GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}

	return count, nil
}

func (r *Repository) CountByStatus(
	ctx context.Context,
) (map[string]int64, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}{}

	query := `SELECT status, COUNT(*) AS count FROM enrollments GROUP BY status`

	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count enrollments by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (row *enrollmentRow) response() *Response {
	return &Response{
		ID: row.ID,
		Course: CourseSummary{
			ID:    row.CourseID,
			Title: row.CourseTitle,
		},
		Student: StudentSummary{
			ID:        row.StudentID,
			FirstName: row.StudentFirstName,
			LastName:  row.StudentLastName,
			Email:     row.StudentEmail,
		},
		Status:     row.Status,
		EnrolledAt: row.EnrolledAt,
	}
}

func responses(rows []enrollmentRow) []Response {
	out := make([]Response, len(rows))
	for i := range rows {
		out[i] = *rows[i].response()
	}
	return out
}
