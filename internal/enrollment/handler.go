// AngelaMos | 2026
// handler.go

package enrollment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ulearner/ulearner-backend/internal/core"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service, validate *validator.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

// ProgressRoutes is the authenticated enrollment surface.
func (h *Handler) ProgressRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/enrollments", h.Enroll)
	r.Patch("/enrollments/{id}/status", h.UpdateStatus)
	r.Get("/courses/{id}/enrollments", h.ListByCourse)

	return r
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	response, err := h.service.Enroll(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, response)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid enrollment id")
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	response, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, response)
}

func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid course id")
	if !ok {
		return
	}

	responses, err := h.service.ListByCourse(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, responses)
}

// ListByStudent serves the profile surface's enrollments view.
func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid user id")
	if !ok {
		return
	}

	responses, err := h.service.ListByStudent(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, responses)
}

func pathID(
	w http.ResponseWriter,
	r *http.Request,
	message string,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		core.BadRequest(w, message)
		return 0, false
	}
	return id, true
}
