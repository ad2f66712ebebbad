package audit

import (
	"context"
	"net/http"
	"strconv"

	"crm_backoffice/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type entryLister interface {
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Entry, error)
}

type Handler struct {
	repo entryLister
}

func NewHandler(repo entryLister) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}

// List returns the audit trail of one entity.
func (h *Handler) List(c *gin.Context) {
	entityType := c.Query("entityType")
	entityID, err := uuid.Parse(c.Query("entityId"))
	if entityType == "" || err != nil {
		httpkit.Error(c, http.StatusBadRequest, "entityType and entityId are required", nil)
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = min(parsed, maxListLimit)
	}

	entries, err := h.repo.ListByEntity(c.Request.Context(), entityType, entityID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": entries})
}
