package domain

import "strings"

// Source records how a lead reached the sales team.
type Source string

const (
	SourceWebsite      Source = "website"
	SourceReferral     Source = "referral"
	SourceWhatsApp     Source = "whatsapp"
	SourceColdOutreach Source = "cold_outreach"
	SourceOther        Source = "other"
)

// LineOfBusiness is the industry a prospect operates in.
type LineOfBusiness string

const (
	LineRestaurant           LineOfBusiness = "restaurant"
	LineRetail               LineOfBusiness = "retail"
	LineProfessionalServices LineOfBusiness = "professional_services"
	LineHealthBeauty         LineOfBusiness = "health_beauty"
	LineConstruction         LineOfBusiness = "construction"
	LineEducation            LineOfBusiness = "education"
	LineTechnology           LineOfBusiness = "technology"
	LineOther                LineOfBusiness = "other"
)

// PaymentHandling is how a prospect takes payment from its own customers.
type PaymentHandling string

const (
	PaymentCash         PaymentHandling = "cash"
	PaymentBankTransfer PaymentHandling = "bank_transfer"
	PaymentCard         PaymentHandling = "card"
	PaymentMixed        PaymentHandling = "mixed"
)

var knownSources = map[Source]struct{}{
	SourceWebsite: {}, SourceReferral: {}, SourceWhatsApp: {}, SourceColdOutreach: {}, SourceOther: {},
}

var knownLines = map[LineOfBusiness]struct{}{
	LineRestaurant: {}, LineRetail: {}, LineProfessionalServices: {}, LineHealthBeauty: {},
	LineConstruction: {}, LineEducation: {}, LineTechnology: {}, LineOther: {},
}

var knownPaymentHandling = map[PaymentHandling]struct{}{
	PaymentCash: {}, PaymentBankTransfer: {}, PaymentCard: {}, PaymentMixed: {},
}

// ParseSource returns nil for blank or unknown input.
func ParseSource(raw string) *Source {
	return parseEnum(raw, knownSources)
}

// ParseLineOfBusiness returns nil for blank or unknown input.
func ParseLineOfBusiness(raw string) *LineOfBusiness {
	return parseEnum(raw, knownLines)
}

// ParsePaymentHandling returns nil for blank or unknown input.
func ParsePaymentHandling(raw string) *PaymentHandling {
	return parseEnum(raw, knownPaymentHandling)
}

// SourceAllowsDetail reports whether a free-text detail accompanies the source.
func SourceAllowsDetail(s Source) bool {
	return s == SourceReferral || s == SourceOther
}

func parseEnum[T ~string](raw string, known map[T]struct{}) *T {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := known[v]; !ok {
		return nil
	}
	return &v
}
