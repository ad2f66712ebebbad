package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm_backoffice/internal/leads/conversion"
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/internal/leads/transport"
	"crm_backoffice/platform/apperr"
	"crm_backoffice/platform/httpkit"
	"crm_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	LeadService
	lastActor uuid.UUID
	stageErr  error
}

func (s *stubService) UpdateStage(_ context.Context, actorID, id uuid.UUID, req transport.UpdateStageRequest) (transport.LeadResponse, error) {
	s.lastActor = actorID
	if s.stageErr != nil {
		return transport.LeadResponse{}, s.stageErr
	}
	return transport.LeadResponse{ID: id, Stage: req.Stage}, nil
}

type stubConverter struct {
	result conversion.Result
	err    error
}

func (s *stubConverter) Convert(context.Context, uuid.UUID, uuid.UUID, conversion.SupplementalFields) (conversion.Result, error) {
	return s.result, s.err
}

func newRouter(svc LeadService, conv Converter, actor uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != uuid.Nil {
			c.Set(httpkit.ContextUserIDKey, actor)
		}
		c.Next()
	})
	New(svc, conv, validator.New()).RegisterRoutes(r.Group("/leads"))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var body httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestConvertStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		result conversion.Result
		status int
		code   string
	}{
		{"intake required", conversion.Result{Outcome: conversion.OutcomeIntakeRequired, MissingFields: []string{"phone"}}, http.StatusUnprocessableEntity, domain.CodeIntakeRequiredForWon},
		{"already converted", conversion.Result{Outcome: conversion.OutcomeAlreadyConverted, ClientID: uuid.New()}, http.StatusConflict, domain.CodeAlreadyConverted},
		{"not found", conversion.Result{Outcome: conversion.OutcomeNotFound}, http.StatusNotFound, domain.CodeLeadNotFound},
		{"conflict", conversion.Result{Outcome: conversion.OutcomeConflict}, http.StatusConflict, domain.CodeConversionConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubService{}, &stubConverter{result: tt.result}, uuid.New())
			rec := do(r, http.MethodPost, "/leads/"+uuid.NewString()+"/convert", "")
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if body := decodeError(t, rec); body.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, body.Code)
			}
		})
	}
}

func TestConvertIntakeRequiredListsMissingFields(t *testing.T) {
	conv := &stubConverter{result: conversion.Result{
		Outcome:       conversion.OutcomeIntakeRequired,
		MissingFields: []string{"businessDescription", "domain"},
	}}
	r := newRouter(&stubService{}, conv, uuid.New())

	rec := do(r, http.MethodPost, "/leads/"+uuid.NewString()+"/convert", `{"taxId":"NL1"}`)

	var body struct {
		Details struct {
			MissingFields []string `json:"missingFields"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Details.MissingFields) != 2 || body.Details.MissingFields[1] != "domain" {
		t.Fatalf("unexpected details: %s", rec.Body.String())
	}
}

func TestConvertSuccess(t *testing.T) {
	clientID, projectID := uuid.New(), uuid.New()
	conv := &stubConverter{result: conversion.Result{
		Outcome:    conversion.OutcomeConverted,
		ClientID:   clientID,
		ClientName: "Acme",
		ProjectID:  projectID,
	}}
	r := newRouter(&stubService{}, conv, uuid.New())

	rec := do(r, http.MethodPost, "/leads/"+uuid.NewString()+"/convert", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body transport.ConvertLeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ClientID != clientID || body.DevelopmentProjectID != projectID || body.ClientName != "Acme" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestUpdateStagePassesActor(t *testing.T) {
	actor := uuid.New()
	svc := &stubService{}
	r := newRouter(svc, &stubConverter{}, actor)

	rec := do(r, http.MethodPatch, "/leads/"+uuid.NewString()+"/stage", `{"stage":"qualified"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastActor != actor {
		t.Fatal("actor not forwarded")
	}
}

func TestUpdateStageMapsDomainErrors(t *testing.T) {
	svc := &stubService{stageErr: apperr.Conflict("lead is won").WithCode(domain.CodeTerminalState)}
	r := newRouter(svc, &stubConverter{}, uuid.New())

	rec := do(r, http.MethodPatch, "/leads/"+uuid.NewString()+"/stage", `{"stage":"lost"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != domain.CodeTerminalState {
		t.Fatal("unexpected code")
	}
}

func TestInvalidLeadID(t *testing.T) {
	r := newRouter(&stubService{}, &stubConverter{}, uuid.New())

	rec := do(r, http.MethodPatch, "/leads/not-a-uuid/stage", `{"stage":"lost"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateStageRequiresStage(t *testing.T) {
	r := newRouter(&stubService{}, &stubConverter{}, uuid.New())

	rec := do(r, http.MethodPatch, "/leads/"+uuid.NewString()+"/stage", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
