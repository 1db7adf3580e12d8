package registration

import (
	"log/slog"
	"net/http"
	"strconv"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	httperr "github.com/aevon-lab/eventreg/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidJSON   = "Invalid JSON body"
	msgInternalError = "Internal server error"
)

// CreateHandler handles POST /v1/events/:event_id/:year/registrations.
func (s *Service) CreateHandler(c *gin.Context) {
	occ, ok := occurrenceParam(c)
	if !ok {
		return
	}

	var req v1.CreateRegistrationRequest
	if !s.bindJSON(c, &req) {
		return
	}

	reg, err := s.Admit(c.Request.Context(), req.AttendeeID, occ, req.Fields)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// GetHandler handles GET /v1/events/:event_id/:year/registrations/:attendee_id.
func (s *Service) GetHandler(c *gin.Context) {
	occ, ok := occurrenceParam(c)
	if !ok {
		return
	}

	reg, err := s.Get(c.Request.Context(), c.Param("attendee_id"), occ)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// UpdateHandler handles PUT /v1/events/:event_id/:year/registrations/:attendee_id.
func (s *Service) UpdateHandler(c *gin.Context) {
	occ, ok := occurrenceParam(c)
	if !ok {
		return
	}

	var req v1.UpdateRegistrationRequest
	if !s.bindJSON(c, &req) {
		return
	}

	status, err := v1.ParseStatus(req.Status)
	if err != nil {
		writeError(c, httperr.ValidationFailed("%s", err.Error()))
		return
	}

	reg, err := s.Transition(c.Request.Context(), c.Param("attendee_id"), occ, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// DeleteHandler handles DELETE /v1/events/:event_id/:year/registrations/:attendee_id.
func (s *Service) DeleteHandler(c *gin.Context) {
	occ, ok := occurrenceParam(c)
	if !ok {
		return
	}

	if err := s.Remove(c.Request.Context(), c.Param("attendee_id"), occ); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AggregateHandler handles GET /v1/events/:event_id/:year/aggregate.
func (s *Service) AggregateHandler(c *gin.Context) {
	occ, ok := occurrenceParam(c)
	if !ok {
		return
	}

	agg, err := s.GetAggregate(c.Request.Context(), occ)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (s *Service) bindJSON(c *gin.Context, dst interface{}) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySizeBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("[Registration] Invalid JSON body received", "error", err, "path", c.FullPath())
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
		})
		return false
	}
	return true
}

// occurrenceParam parses :event_id and :year. On failure it writes the 400 itself.
func occurrenceParam(c *gin.Context) (v1.Occurrence, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		writeError(c, httperr.ValidationFailed("year must be an integer, got %q", c.Param("year")))
		return v1.Occurrence{}, false
	}
	return v1.Occurrence{EventID: c.Param("event_id"), Year: year}, true
}

// writeError maps a service error onto the JSON error response.
// Errors without a kind are logged and reported as internal.
func writeError(c *gin.Context, err error) {
	status, errType := httperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("[Registration] Request failed", "error", err, "path", c.FullPath())
		msg = msgInternalError
	}
	c.JSON(status, httperr.ErrorResponse{ErrorType: errType, Message: msg})
}
