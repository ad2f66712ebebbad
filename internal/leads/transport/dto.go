package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name               string  `json:"name" validate:"required,notblank,max=200"`
	Company            *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email              *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Source             string  `json:"source" validate:"required,oneof=website referral whatsapp cold_outreach other"`
	SourceDetail       *string `json:"sourceDetail,omitempty" validate:"omitempty,max=500"`
	LineOfBusiness     *string `json:"lineOfBusiness,omitempty" validate:"omitempty,max=64"`
	ExpectedValueCents *int64  `json:"expectedValueCents,omitempty" validate:"omitempty,min=0"`
	Notes              string  `json:"notes,omitempty" validate:"max=5000"`
}

type UpdateStageRequest struct {
	Stage      string  `json:"stage" validate:"required,notblank,max=32"`
	LostReason *string `json:"lostReason,omitempty" validate:"omitempty,max=1000"`
}

// SaveIntakeRequest carries a partial intake update. Absent keys are left
// untouched; enum values outside the known set are stored as unset.
type SaveIntakeRequest struct {
	Company             OptionalString `json:"company" validate:"-"`
	Phone               OptionalString `json:"phone" validate:"-"`
	AddressToUse        OptionalString `json:"addressToUse" validate:"-"`
	HasDomain           *bool          `json:"hasDomain,omitempty"`
	Domain              OptionalString `json:"domain" validate:"-"`
	WhatsAppEnabled     *bool          `json:"whatsappEnabled,omitempty"`
	BusinessDescription OptionalString `json:"businessDescription" validate:"-"`
	ServiceOutcome      OptionalString `json:"serviceOutcome" validate:"-"`
	AdminEaseNotes      OptionalString `json:"adminEaseNotes" validate:"-"`
	PaymentHandling     OptionalString `json:"paymentHandling" validate:"-"`
	LineOfBusiness      OptionalString `json:"lineOfBusiness" validate:"-"`
	HasLogo             *bool          `json:"hasLogo,omitempty"`
	LogoURL             OptionalString `json:"logoUrl" validate:"-"`
}

// ConvertLeadRequest carries the data only known at conversion time.
type ConvertLeadRequest struct {
	TaxID      *string `json:"taxId,omitempty" validate:"omitempty,max=64"`
	NationalID *string `json:"nationalId,omitempty" validate:"omitempty,max=64"`
}

type ListLeadsRequest struct {
	Stage    string `form:"stage" validate:"omitempty,max=32"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// Response DTOs
type LeadResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Company             *string    `json:"company,omitempty"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	Source              string     `json:"source"`
	SourceDetail        *string    `json:"sourceDetail,omitempty"`
	LineOfBusiness      *string    `json:"lineOfBusiness,omitempty"`
	ExpectedValueCents  *int64     `json:"expectedValueCents,omitempty"`
	Notes               string     `json:"notes"`
	LostReason          *string    `json:"lostReason,omitempty"`
	Stage               string     `json:"stage"`
	AddressToUse        *string    `json:"addressToUse,omitempty"`
	HasDomain           bool       `json:"hasDomain"`
	Domain              *string    `json:"domain,omitempty"`
	WhatsAppEnabled     bool       `json:"whatsappEnabled"`
	BusinessDescription *string    `json:"businessDescription,omitempty"`
	ServiceOutcome      *string    `json:"serviceOutcome,omitempty"`
	AdminEaseNotes      *string    `json:"adminEaseNotes,omitempty"`
	PaymentHandling     *string    `json:"paymentHandling,omitempty"`
	HasLogo             bool       `json:"hasLogo"`
	LogoURL             *string    `json:"logoUrl,omitempty"`
	ConvertedClientID   *uuid.UUID `json:"convertedClientId,omitempty"`
	WonAt               *time.Time `json:"wonAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type MissingIntakeResponse struct {
	LeadID        uuid.UUID `json:"leadId"`
	MissingFields []string  `json:"missingFields"`
	Eligible      bool      `json:"eligible"`
}

type ConvertLeadResponse struct {
	ClientID             uuid.UUID `json:"clientId"`
	ClientName           string    `json:"clientName"`
	DevelopmentProjectID uuid.UUID `json:"developmentProjectId"`
	ProjectReused        bool      `json:"projectReused"`
}
