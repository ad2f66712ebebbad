package conversion

import (
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/platform/apperr"
)

// ResultError maps a non-converted outcome to its API error. It returns nil
// for OutcomeConverted.
func ResultError(r Result) error {
	switch r.Outcome {
	case OutcomeConverted:
		return nil
	case OutcomeNotFound:
		return apperr.NotFound("lead not found").WithCode(domain.CodeLeadNotFound)
	case OutcomeAlreadyConverted:
		return apperr.Conflict("lead already converted").
			WithCode(domain.CodeAlreadyConverted).
			WithDetails(map[string]any{"clientId": r.ClientID})
	case OutcomeIntakeRequired:
		return apperr.Unprocessable("intake incomplete").
			WithCode(domain.CodeIntakeRequiredForWon).
			WithDetails(map[string]any{"missingFields": r.MissingFields})
	default:
		return apperr.Conflict("lead changed during conversion, re-fetch and retry").
			WithCode(domain.CodeConversionConflict)
	}
}
