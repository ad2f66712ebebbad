package domain

// IntakeSnapshot is the frozen copy of a lead's intake stored on the
// development project at conversion time.
type IntakeSnapshot struct {
	Company             *string          `json:"company,omitempty"`
	Phone               *string          `json:"phone,omitempty"`
	AddressToUse        *string          `json:"addressToUse,omitempty"`
	HasDomain           bool             `json:"hasDomain"`
	Domain              *string          `json:"domain,omitempty"`
	WhatsAppEnabled     bool             `json:"whatsappEnabled"`
	BusinessDescription *string          `json:"businessDescription,omitempty"`
	ServiceOutcome      *string          `json:"serviceOutcome,omitempty"`
	AdminEaseNotes      *string          `json:"adminEaseNotes,omitempty"`
	PaymentHandling     *PaymentHandling `json:"paymentHandling,omitempty"`
	LineOfBusiness      *LineOfBusiness  `json:"lineOfBusiness,omitempty"`
	HasLogo             bool             `json:"hasLogo"`
	LogoURL             *string          `json:"logoUrl,omitempty"`
}

// BuildSnapshot copies every intake field. Pointers are duplicated so the
// snapshot shares no memory with the source. It does not validate.
func BuildSnapshot(in IntakeFields) IntakeSnapshot {
	return IntakeSnapshot{
		Company:             clonePtr(in.Company),
		Phone:               clonePtr(in.Phone),
		AddressToUse:        clonePtr(in.AddressToUse),
		HasDomain:           in.HasDomain,
		Domain:              clonePtr(in.Domain),
		WhatsAppEnabled:     in.WhatsAppEnabled,
		BusinessDescription: clonePtr(in.BusinessDescription),
		ServiceOutcome:      clonePtr(in.ServiceOutcome),
		AdminEaseNotes:      clonePtr(in.AdminEaseNotes),
		PaymentHandling:     clonePtr(in.PaymentHandling),
		LineOfBusiness:      clonePtr(in.LineOfBusiness),
		HasLogo:             in.HasLogo,
		LogoURL:             clonePtr(in.LogoURL),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
