// Package domain holds the lead lifecycle rules: stages and their legal
// changes, the intake completeness gate and the frozen intake snapshot.
// Nothing here touches storage.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospect moving through the sales funnel.
type Lead struct {
	ID                  uuid.UUID
	Name                string
	Company             *string
	Email               *string
	Phone               *string
	Source              Source
	SourceDetail        *string
	LineOfBusiness      *LineOfBusiness
	ExpectedValueCents  *int64
	Notes               string
	LostReason          *string
	Stage               Stage
	AddressToUse        *string
	HasDomain           bool
	Domain              *string
	WhatsAppEnabled     bool
	BusinessDescription *string
	ServiceOutcome      *string
	AdminEaseNotes      *string
	PaymentHandling     *PaymentHandling
	HasLogo             bool
	LogoURL             *string
	ConvertedClientID   *uuid.UUID
	WonAt               *time.Time
	CreatedBy           uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsConverted reports whether the lead has been turned into a client.
// A converted lead is always in the won stage.
func (l Lead) IsConverted() bool {
	return l.ConvertedClientID != nil
}

// Intake projects the intake-related fields of the lead.
func (l Lead) Intake() IntakeFields {
	return IntakeFields{
		Company:             l.Company,
		Phone:               l.Phone,
		AddressToUse:        l.AddressToUse,
		HasDomain:           l.HasDomain,
		Domain:              l.Domain,
		WhatsAppEnabled:     l.WhatsAppEnabled,
		BusinessDescription: l.BusinessDescription,
		ServiceOutcome:      l.ServiceOutcome,
		AdminEaseNotes:      l.AdminEaseNotes,
		PaymentHandling:     l.PaymentHandling,
		LineOfBusiness:      l.LineOfBusiness,
		HasLogo:             l.HasLogo,
		LogoURL:             l.LogoURL,
	}
}
