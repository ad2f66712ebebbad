package management

import (
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/internal/leads/transport"
)

// ToLeadResponse maps a lead to its API representation.
func ToLeadResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                  lead.ID,
		Name:                lead.Name,
		Company:             lead.Company,
		Email:               lead.Email,
		Phone:               lead.Phone,
		Source:              string(lead.Source),
		SourceDetail:        lead.SourceDetail,
		LineOfBusiness:      enumString(lead.LineOfBusiness),
		ExpectedValueCents:  lead.ExpectedValueCents,
		Notes:               lead.Notes,
		LostReason:          lead.LostReason,
		Stage:               string(lead.Stage),
		AddressToUse:        lead.AddressToUse,
		HasDomain:           lead.HasDomain,
		Domain:              lead.Domain,
		WhatsAppEnabled:     lead.WhatsAppEnabled,
		BusinessDescription: lead.BusinessDescription,
		ServiceOutcome:      lead.ServiceOutcome,
		AdminEaseNotes:      lead.AdminEaseNotes,
		PaymentHandling:     enumString(lead.PaymentHandling),
		HasLogo:             lead.HasLogo,
		LogoURL:             lead.LogoURL,
		ConvertedClientID:   lead.ConvertedClientID,
		WonAt:               lead.WonAt,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
}

func enumString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
