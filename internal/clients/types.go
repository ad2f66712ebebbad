package clients

import (
	"time"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
)

// ClientResponse is the API representation of a client.
type ClientResponse struct {
	ID                   uuid.UUID  `json:"id"`
	LeadID               *uuid.UUID `json:"leadId,omitempty"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Phone                *string    `json:"phone,omitempty"`
	AddressToUse         *string    `json:"addressToUse,omitempty"`
	LineOfBusiness       *string    `json:"lineOfBusiness,omitempty"`
	PaymentHandling      *string    `json:"paymentHandling,omitempty"`
	TaxID                *string    `json:"taxId,omitempty"`
	NationalID           *string    `json:"nationalId,omitempty"`
	DevelopmentProjectID *uuid.UUID `json:"developmentProjectId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func toResponse(c domain.Client, projectID *uuid.UUID) ClientResponse {
	resp := ClientResponse{
		ID:                   c.ID,
		LeadID:               c.LeadID,
		Name:                 c.Name,
		Email:                c.Email,
		Phone:                c.Phone,
		AddressToUse:         c.AddressToUse,
		TaxID:                c.TaxID,
		NationalID:           c.NationalID,
		DevelopmentProjectID: projectID,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	if c.LineOfBusiness != nil {
		v := string(*c.LineOfBusiness)
		resp.LineOfBusiness = &v
	}
	if c.PaymentHandling != nil {
		v := string(*c.PaymentHandling)
		resp.PaymentHandling = &v
	}
	return resp
}
