// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// courseRow joins the course with its instructor's public fields.
type courseRow struct {
	Course
	InstructorFirstName string `db:"instructor_first_name"`
	InstructorLastName  string `db:"instructor_last_name"`
	InstructorEmail     string `db:"instructor_email"`
}

const courseColumns = `
	c.id, c.title, c.description, c.thumbnail_url, c.instructor_id,
	c.created_at,
	u.first_name AS instructor_first_name,
	u.last_name  AS instructor_last_name,
	u.email      AS instructor_email`

type Repository struct {
	db *core.Database
}

func NewRepository(db *core.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Course) (*Course, error) {
	query := `
		INSERT INTO courses (title, description, thumbnail_url, instructor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.Querier(ctx).QueryRowxContext(
		ctx,
		query,
		c.Title,
		c.Description,
		c.ThumbnailURL,
		c.InstructorID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}

	return c, nil
}

func (r *Repository) Update(ctx context.Context, c *Course) error {
	query := `
		UPDATE courses
		SET title = $1, description = $2, thumbnail_url = $3, instructor_id = $4
		WHERE id = $5`

	res, err := r.db.Querier(ctx).ExecContext(
		ctx,
		query,
		c.Title,
		c.Description,
		c.ThumbnailURL,
		c.InstructorID,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundError("course")
	}

	return nil
}

// Delete removes the course; lessons and enrollments cascade. Absent rows are
// not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM courses WHERE id = $1`

	if _, err := r.db.Querier(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(
	ctx context.Context,
	id int64,
) (*Course, *Instructor, error) {
	var row courseRow

	query := `
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.instructor_id
		WHERE c.id = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, core.NotFoundError("course")
		}
		return nil, nil, fmt.Errorf("select course: %w", err)
	}

	return &row.Course, row.instructor(), nil
}

// List returns courses with instructors, newest first.
func (r *Repository) List(
	ctx context.Context,
) ([]Course, []Instructor, error) {
	rows := []courseRow{}

	query := `
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.instructor_id
		ORDER BY c.created_at DESC, c.id DESC`

	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, nil, fmt.Errorf("list courses: %w", err)
	}

	courses := make([]Course, len(rows))
	instructors := make([]Instructor, len(rows))
	for i, row := range rows {
		courses[i] = row.Course
		instructors[i] = *row.instructor()
	}

	return courses, instructors, nil
}

func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`

	if err := r.db.Querier(ctx).GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check course exists: %w", err)
	}

	return exists, nil
}

func (r *Repository) InsertLesson(
	ctx context.Context,
	l *Lesson,
) (*Lesson, error) {
	query := `
		INSERT INTO lessons (course_id, title, content, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.Querier(ctx).QueryRowxContext(
		ctx,
		query,
		l.CourseID,
		l.Title,
		l.Content,
		l.Position,
	).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("insert lesson: %w", err)
	}

	return l, nil
}

func (r *Repository) DeleteLessonsByCourse(
	ctx context.Context,
	courseID int64,
) error {
	query := `DELETE FROM lessons WHERE course_id = $1`

	if _, err := r.db.Querier(ctx).ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("delete lessons: %w", err)
	}

	return nil
}

func (r *Repository) LessonsByCourse(
	ctx context.Context,
	courseID int64,
) ([]Lesson, error) {
	lessons := []Lesson{}

	query := `
		SELECT id, course_id, title, content, position
		FROM lessons
		WHERE course_id = $1
		ORDER BY position, id`

	err := r.db.Querier(ctx).SelectContext(ctx, &lessons, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}

	return lessons, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM courses`

	if err := r.db.Querier(ctx).GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}

	return count, nil
}

func (row *courseRow) instructor() *Instructor {
	return &Instructor{
		ID:        row.InstructorID,
		FirstName: row.InstructorFirstName,
		LastName:  row.InstructorLastName,
		Email:     row.InstructorEmail,
	}
}
