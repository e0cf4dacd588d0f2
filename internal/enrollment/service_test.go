// AngelaMos | 2026
// service_test.go

package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/ulearner/ulearner-backend/internal/core"
)

type passTxr struct{}

func (passTxr) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	return fn(ctx)
}

type fakeIDs struct {
	ids map[int64]bool
}

func (f *fakeIDs) ExistsByID(_ context.Context, id int64) (bool, error) {
	return f.ids[id], nil
}

type pairKey struct {
	studentID int64
	courseID  int64
}

type fakeStore struct {
	byID   map[int64]*Enrollment
	pairs  map[pairKey]int64
	nextID int64

	// forceConflict makes the next Create fail as a duplicate, simulating a
	// race that slipped past the advisory check.
	forceConflict bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:   map[int64]*Enrollment{},
		pairs:  map[pairKey]int64{},
		nextID: 1,
	}
}

func (f *fakeStore) Create(
	_ context.Context,
	e *Enrollment,
) (*Enrollment, error) {
	key := pairKey{studentID: e.StudentID, courseID: e.CourseID}
	if _, dup := f.pairs[key]; dup || f.forceConflict {
		return nil, core.ConflictError(
			"student is already enrolled in this course",
		)
	}

	e.ID = f.nextID
	e.EnrolledAt = time.Now()
	f.nextID++

	copied := *e
	f.byID[e.ID] = &copied
	f.pairs[key] = e.ID
	return e, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Response, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, core.NotFoundError("enrollment")
	}
	return &Response{
		ID:         e.ID,
		Course:     CourseSummary{ID: e.CourseID},
		Student:    StudentSummary{ID: e.StudentID},
		Status:     e.Status,
		EnrolledAt: e.EnrolledAt,
	}, nil
}

func (f *fakeStore) UpdateStatus(
	_ context.Context,
	id int64,
	status string,
) error {
	e, ok := f.byID[id]
	if !ok {
		return core.NotFoundError("enrollment")
	}
	e.Status = status
	return nil
}

func (f *fakeStore) ExistsPair(
	_ context.Context,
	studentID, courseID int64,
) (bool, error) {
	_, ok := f.pairs[pairKey{studentID: studentID, courseID: courseID}]
	return ok, nil
}

func (f *fakeStore) ListByStudent(
	ctx context.Context,
	studentID int64,
) ([]Response, error) {
	out := []Response{}
	for id := f.nextID - 1; id >= 1; id-- {
		if e, ok := f.byID[id]; ok && e.StudentID == studentID {
			r, _ := f.GetByID(ctx, id) //nolint:errcheck // known id
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCourse(
	ctx context.Context,
	courseID int64,
) ([]Response, error) {
	out := []Response{}
	for id := f.nextID - 1; id >= 1; id-- {
		if e, ok := f.byID[id]; ok && e.CourseID == courseID {
			r, _ := f.GetByID(ctx, id) //nolint:errcheck // known id
			out = append(out, *r)
		}
	}
	return out, nil
}

func newTestService(
	courseIDs []int64,
	studentIDs []int64,
) (*Service, *fakeStore) {
	toSet := func(ids []int64) map[int64]bool {
		set := map[int64]bool{}
		for _, id := range ids {
			set[id] = true
		}
		return set
	}

	store := newFakeStore()
	service := NewService(
		passTxr{},
		store,
		&fakeIDs{ids: toSet(courseIDs)},
		&fakeIDs{ids: toSet(studentIDs)},
		slog.New(slog.DiscardHandler),
	)

	return service, store
}

func TestEnroll(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	response, err := service.Enroll(context.Background(), EnrollRequest{
		CourseID:  10,
		StudentID: 20,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if response.Status != StatusPending {
		t.Errorf("status = %q, want %q", response.Status, StatusPending)
	}
	if response.Course.ID != 10 || response.Student.ID != 20 {
		t.Errorf(
			"course/student = %d/%d, want 10/20",
			response.Course.ID,
			response.Student.ID,
		)
	}
}

func TestEnrollUnknownCourse(t *testing.T) {
	service, _ := newTestService(nil, []int64{20})

	_, err := service.Enroll(context.Background(), EnrollRequest{
		CourseID:  10,
		StudentID: 20,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEnrollUnknownStudent(t *testing.T) {
	service, _ := newTestService([]int64{10}, nil)

	_, err := service.Enroll(context.Background(), EnrollRequest{
		CourseID:  10,
		StudentID: 20,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEnrollDuplicateConflicts(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	req := EnrollRequest{CourseID: 10, StudentID: 20}
	if _, err := service.Enroll(context.Background(), req); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}

	_, err := service.Enroll(context.Background(), req)
	if core.StatusForError(err) != http.StatusConflict {
		t.Errorf(
			"status = %d, want 409 (err %v)",
			core.StatusForError(err),
			err,
		)
	}
}

func TestEnrollRaceLandsAsConflict(t *testing.T) {
	service, store := newTestService([]int64{10}, []int64{20})
	store.forceConflict = true

	_, err := service.Enroll(context.Background(), EnrollRequest{
		CourseID:  10,
		StudentID: 20,
	})
	if core.StatusForError(err) != http.StatusConflict {
		t.Errorf(
			"status = %d, want 409 (err %v)",
			core.StatusForError(err),
			err,
		)
	}
}

func TestUpdateStatusUnrestricted(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	created, err := service.Enroll(context.Background(), EnrollRequest{
		CourseID:  10,
		StudentID: 20,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	// Any known status is reachable from any other.
	for _, status := range []string{
		StatusCompleted,
		StatusPending,
		StatusCancelled,
		StatusActive,
	} {
		response, err := service.UpdateStatus(
			context.Background(),
			created.ID,
			StatusUpdateRequest{Status: status},
		)
		if err != nil {
			t.Fatalf("UpdateStatus to %s: %v", status, err)
		}
		if response.Status != status {
			t.Errorf("status = %q, want %q", response.Status, status)
		}
	}
}

func TestUpdateStatusUnknownEnrollment(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	_, err := service.UpdateStatus(
		context.Background(),
		99,
		StatusUpdateRequest{Status: StatusCompleted},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListByStudent(t *testing.T) {
	service, _ := newTestService([]int64{10, 11}, []int64{20, 21})

	for _, req := range []EnrollRequest{
		{CourseID: 10, StudentID: 20},
		{CourseID: 11, StudentID: 20},
		{CourseID: 10, StudentID: 21},
	} {
		if _, err := service.Enroll(context.Background(), req); err != nil {
			t.Fatalf("Enroll %+v: %v", req, err)
		}
	}

	mine, err := service.ListByStudent(context.Background(), 20)
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("enrollments = %d, want 2", len(mine))
	}

	byCourse, err := service.ListByCourse(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListByCourse: %v", err)
	}
	if len(byCourse) != 2 {
		t.Errorf("course enrollments = %d, want 2", len(byCourse))
	}
}

func TestListByStudentUnknownStudent(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	_, err := service.ListByStudent(context.Background(), 99)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListByCourseUnknownCourse(t *testing.T) {
	service, _ := newTestService([]int64{10}, []int64{20})

	_, err := service.ListByCourse(context.Background(), 99)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
