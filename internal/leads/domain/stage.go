package domain

import (
	"errors"
	"strings"
)

// Stage is a position of a lead in the sales funnel.
type Stage string

const (
	StageNew         Stage = "new"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

var knownStages = map[Stage]struct{}{
	StageNew:         {},
	StageQualified:   {},
	StageProposal:    {},
	StageNegotiation: {},
	StageWon:         {},
	StageLost:        {},
}

var (
	// ErrInvalidStage is returned for a stage value outside the known set.
	ErrInvalidStage = errors.New("invalid stage value")
	// ErrDirectWon is returned when won is requested outside of conversion.
	ErrDirectWon = errors.New("won is only reachable through conversion")
	// ErrTerminalState is returned for any stage change on a won lead.
	ErrTerminalState = errors.New("lead is won; its stage can no longer change")
	// ErrLostReasonRequired is returned when strict mode is on and lost has no reason.
	ErrLostReasonRequired = errors.New("a reason is required when marking a lead lost")
)

// ParseStage returns the stage for raw, ignoring case and surrounding space.
func ParseStage(raw string) (Stage, bool) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownStages[s]; !ok {
		return "", false
	}
	return s, true
}

// IsKnown reports whether s is one of the funnel stages.
func (s Stage) IsKnown() bool {
	_, ok := knownStages[s]
	return ok
}

// IsTerminal reports whether no further stage change is accepted.
// Only won is terminal; lost leads may re-enter the funnel.
func (s Stage) IsTerminal() bool {
	return s == StageWon
}

// ValidateStageChange applies the generic stage-update rules.
//
// Checks run in a fixed order: unknown target, then a won target (rejected
// whatever the current stage, including won itself), then a won current stage.
// Any other pair is legal; the funnel is not linear and the same stage may be
// re-applied.
func ValidateStageChange(current, target Stage) error {
	if !target.IsKnown() {
		return ErrInvalidStage
	}
	if target == StageWon {
		return ErrDirectWon
	}
	if current.IsTerminal() {
		return ErrTerminalState
	}
	return nil
}

// ValidateLostReason checks the reason supplied when entering lost.
// In lenient mode a missing reason is accepted.
func ValidateLostReason(target Stage, reason *string, required bool) error {
	if target != StageLost || !required {
		return nil
	}
	if isBlank(reason) {
		return ErrLostReasonRequired
	}
	return nil
}

// LostReasonFor returns the reason to store after moving to target.
// The reason only has meaning while the lead is lost, so it is cleared
// on any other target.
func LostReasonFor(target Stage, reason *string) *string {
	if target != StageLost || isBlank(reason) {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	return &trimmed
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
