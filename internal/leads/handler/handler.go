package handler

import (
	"context"
	"net/http"

	"crm_backoffice/internal/leads/conversion"
	"crm_backoffice/internal/leads/transport"
	"crm_backoffice/platform/httpkit"
	"crm_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadService is the lead management surface used by the handler.
type LeadService interface {
	Create(ctx context.Context, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error)
	List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error)
	UpdateStage(ctx context.Context, actorID, id uuid.UUID, req transport.UpdateStageRequest) (transport.LeadResponse, error)
	SaveIntake(ctx context.Context, actorID, id uuid.UUID, req transport.SaveIntakeRequest) (transport.LeadResponse, error)
	MissingIntake(ctx context.Context, id uuid.UUID) (transport.MissingIntakeResponse, error)
}

// Converter runs the WON conversion.
type Converter interface {
	Convert(ctx context.Context, actorID, leadID uuid.UUID, supplemental conversion.SupplementalFields) (conversion.Result, error)
}

type Handler struct {
	svc       LeadService
	converter Converter
	val       *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgInvalidLeadID    = "invalid lead id"
	msgValidationFailed = "validation failed"
)

func New(svc LeadService, converter Converter, val *validator.Validator) *Handler {
	return &Handler{svc: svc, converter: converter, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/stage", h.UpdateStage)
	rg.PATCH("/:id/intake", h.SaveIntake)
	rg.GET("/:id/intake/missing", h.MissingIntake)
	rg.POST("/:id/convert", h.Convert)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), httpkit.ActorID(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.UpdateStage(c.Request.Context(), httpkit.ActorID(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) SaveIntake(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.SaveIntakeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.SaveIntake(c.Request.Context(), httpkit.ActorID(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) MissingIntake(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.MissingIntake(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Convert runs the WON conversion. Precondition outcomes are reported as
// typed errors; only a completed conversion returns 200.
func (h *Handler) Convert(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ConvertLeadRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.converter.Convert(c.Request.Context(), httpkit.ActorID(c), id, conversion.SupplementalFields{
		TaxID:      req.TaxID,
		NationalID: req.NationalID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if httpkit.HandleError(c, conversion.ResultError(result)) {
		return
	}

	httpkit.OK(c, transport.ConvertLeadResponse{
		ClientID:             result.ClientID,
		ClientName:           result.ClientName,
		DevelopmentProjectID: result.ProjectID,
		ProjectReused:        result.ProjectReused,
	})
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}
