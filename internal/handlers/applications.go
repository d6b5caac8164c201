package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveron/applytrack/internal/models"
	"github.com/mveron/applytrack/internal/services"
	"github.com/mveron/applytrack/internal/store"
	"github.com/mveron/applytrack/pkg/dto"
)

const dateLayout = "2006-01-02"

type ApplicationHandler struct {
	tracker *services.Tracker
}

func NewApplicationHandler(tracker *services.Tracker) *ApplicationHandler {
	return &ApplicationHandler{tracker: tracker}
}

func (h *ApplicationHandler) List(c *drift.Context) {
	opts := services.ListOptions{
		Query:           c.QueryParam("q"),
		IncludeRejected: c.QueryParam("include_rejected") == "true",
	}

	apps := h.tracker.List(opts)

	response := make([]dto.ApplicationResponse, len(apps))
	for i, a := range apps {
		response[i] = toResponse(a.Application, a.Rank)
	}
	_ = c.JSON(200, response)
}

func (h *ApplicationHandler) Create(c *drift.Context) {
	var req dto.CreateApplicationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	date, ok := parseDate(c, req.SubmissionDate)
	if !ok {
		return
	}

	app, err := h.tracker.Add(context.Background(), services.ApplicationFields{
		Company:        req.Company,
		Position:       req.Position,
		Location:       req.Location,
		SubmissionDate: date,
		Notes:          req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	_ = c.JSON(201, toResponse(app, 0))
}

func (h *ApplicationHandler) Update(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid application id")
		return
	}

	var req dto.UpdateApplicationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	date, ok := parseDate(c, req.SubmissionDate)
	if !ok {
		return
	}

	app, err := h.tracker.Edit(context.Background(), id, services.ApplicationFields{
		Company:        req.Company,
		Position:       req.Position,
		Location:       req.Location,
		SubmissionDate: date,
		Notes:          req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	_ = c.JSON(200, toResponse(app, 0))
}

func (h *ApplicationHandler) Reject(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid application id")
		return
	}

	app, err := h.tracker.Reject(context.Background(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	_ = c.JSON(200, toResponse(app, 0))
}

// ArmDelete puts the record into the confirmation state; nothing is
// removed or persisted until the confirm call.
func (h *ApplicationHandler) ArmDelete(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid application id")
		return
	}

	app, err := h.tracker.ArmDelete(id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	_ = c.JSON(200, map[string]any{
		"armed":       true,
		"application": toResponse(app, 0),
	})
}

func (h *ApplicationHandler) ConfirmDelete(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid application id")
		return
	}

	app, err := h.tracker.ConfirmDelete(context.Background(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	_ = c.JSON(200, map[string]any{
		"deleted":     true,
		"application": toResponse(app, 0),
	})
}

func (h *ApplicationHandler) CancelDelete(c *drift.Context) {
	h.tracker.CancelDelete()
	_ = c.JSON(200, map[string]any{"armed": false})
}

// Reload re-fetches the whole file, discarding any local state that
// never made it to a commit. It is the recovery path after a 409.
func (h *ApplicationHandler) Reload(c *drift.Context) {
	if err := h.tracker.Load(context.Background()); err != nil {
		h.writeError(c, err)
		return
	}
	_ = c.JSON(200, map[string]string{"message": "reloaded"})
}

func (h *ApplicationHandler) writeError(c *drift.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.BadRequest(validationErr.Error())
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		c.NotFound("application not found")
		return
	}
	if errors.Is(err, services.ErrNothingArmed) {
		c.BadRequest("delete is not armed for this application")
		return
	}
	if errors.Is(err, store.ErrConflict) {
		_ = c.JSON(409, map[string]any{
			"code":    "REVISION_CONFLICT",
			"message": "the file has been modified outside this session; reload and retry",
		})
		return
	}
	var unavailableErr *store.UnavailableError
	if errors.As(err, &unavailableErr) {
		_ = c.JSON(502, map[string]any{
			"code":            "STORE_UNAVAILABLE",
			"message":         unavailableErr.Error(),
			"upstream_status": unavailableErr.StatusCode,
		})
		return
	}
	c.InternalServerError("unexpected error")
}

func parseDate(c *drift.Context, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		c.BadRequest("invalid submission_date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func toResponse(a models.Application, rank int) dto.ApplicationResponse {
	date := ""
	if !a.Undated() {
		date = a.SubmissionDate.Format(dateLayout)
	}
	return dto.ApplicationResponse{
		ID:             a.ID,
		Company:        a.Company,
		Position:       a.Position,
		Location:       a.Location,
		SubmissionDate: date,
		Notes:          a.Notes,
		Rejected:       a.Rejected,
		Rank:           rank,
	}
}
