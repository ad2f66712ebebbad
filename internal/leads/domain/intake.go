package domain

// Intake field names reported by MissingIntakeFields. The UI keys its form
// inputs on these.
const (
	FieldCompany             = "company"
	FieldAddressToUse        = "addressToUse"
	FieldPhone               = "phone"
	FieldBusinessDescription = "businessDescription"
	FieldServiceOutcome      = "serviceOutcome"
	FieldAdminEaseNotes      = "adminEaseNotes"
	FieldLineOfBusiness      = "lineOfBusiness"
	FieldPaymentHandling     = "paymentHandling"
	FieldDomain              = "domain"
	FieldLogo                = "logo"
)

// IntakeFields is the read projection of a lead used by the WON gate.
type IntakeFields struct {
	Company             *string
	Phone               *string
	AddressToUse        *string
	HasDomain           bool
	Domain              *string
	WhatsAppEnabled     bool
	BusinessDescription *string
	ServiceOutcome      *string
	AdminEaseNotes      *string
	PaymentHandling     *PaymentHandling
	LineOfBusiness      *LineOfBusiness
	HasLogo             bool
	LogoURL             *string
}

// MissingIntakeFields lists the fields still blocking conversion, in a fixed
// order. An empty result means the lead may be converted.
// Whitespace-only values count as missing.
func MissingIntakeFields(in IntakeFields) []string {
	missing := make([]string, 0)

	required := []struct {
		name  string
		value *string
	}{
		{FieldCompany, in.Company},
		{FieldAddressToUse, in.AddressToUse},
		{FieldPhone, in.Phone},
		{FieldBusinessDescription, in.BusinessDescription},
		{FieldServiceOutcome, in.ServiceOutcome},
		{FieldAdminEaseNotes, in.AdminEaseNotes},
	}
	for _, f := range required {
		if isBlank(f.value) {
			missing = append(missing, f.name)
		}
	}

	if in.LineOfBusiness == nil {
		missing = append(missing, FieldLineOfBusiness)
	}
	if in.PaymentHandling == nil {
		missing = append(missing, FieldPaymentHandling)
	}
	if in.HasDomain && isBlank(in.Domain) {
		missing = append(missing, FieldDomain)
	}
	if in.HasLogo && isBlank(in.LogoURL) {
		missing = append(missing, FieldLogo)
	}

	return missing
}
