package domain

// Machine-readable codes attached to lifecycle errors and outcomes.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeLeadNotFound         = "LEAD_NOT_FOUND"
	CodeTerminalState        = "TERMINAL_STATE_VIOLATION"
	CodeDirectWon            = "DIRECT_WON_TRANSITION_REJECTED"
	CodeInvalidStage         = "INVALID_STAGE_VALUE"
	CodeLostReasonRequired   = "LOST_REASON_REQUIRED"
	CodeIntakeRequiredForWon = "INTAKE_REQUIRED_FOR_WON"
	CodeAlreadyConverted     = "ALREADY_CONVERTED"
	CodeConversionConflict   = "CONVERSION_CONFLICT"
)
