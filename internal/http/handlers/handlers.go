package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/scheduler"
	"github.com/dayplanner/backend/internal/service"
)

const UserIDHeader = "X-User-Id"

type Handler struct {
	Service   *service.PlanningService
	Store     db.Repository
	Zone      civil.Zone
	Validator *validator.Validate
	Logger    zerolog.Logger
	MaxUpload int64
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// fail maps service errors onto the error envelope.
func (h *Handler) fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", message, err.Error())
	case errors.Is(err, scheduler.ErrInvalidInput),
		errors.Is(err, civil.ErrBadTimestamp),
		errors.Is(err, service.ErrInvalidTask),
		errors.Is(err, service.ErrProfileRequired),
		errors.Is(err, catalog.ErrInvalidCatalog):
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", message, err.Error())
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg(message)
		writeError(c, http.StatusInternalServerError, "DB_ERROR", message, err.Error())
	}
}

// bind decodes the JSON body into req and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserIDHeader))
}

func requireUser(c *gin.Context) (string, bool) {
	id := userID(c)
	if id == "" {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", UserIDHeader+" header required", nil)
		return "", false
	}
	return id, true
}

// parseTime parses an optional ISO-8601 timestamp in the civil zone.
func (h *Handler) parseTime(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := h.Zone.Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
