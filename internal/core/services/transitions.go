package services

import (
	"fmt"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"
)

// Visit actions
const (
	ActionCheckIn   = "check_in"
	ActionCallNext  = "call_next"
	ActionComplete  = "complete"
	ActionHold      = "hold"
	ActionResume    = "resume"
	ActionCancel    = "cancel"
	ActionNoShow    = "no_show"
	ActionSkip      = "skip"
	ActionCarryOver = "carry_over"
	ActionReassign  = "reassign"
)

type transition struct {
	from []string
	to   string
}

// transitionTable is the single source of truth for the visit state machine.
// Reassign keeps the current status, so its target is empty.
var transitionTable = map[string]transition{
	ActionCallNext:  {from: []string{models.VisitWaiting}, to: models.VisitInProgress},
	ActionComplete:  {from: []string{models.VisitInProgress}, to: models.VisitCompleted},
	ActionHold:      {from: []string{models.VisitWaiting, models.VisitInProgress}, to: models.VisitOnHold},
	ActionResume:    {from: []string{models.VisitOnHold}, to: models.VisitWaiting},
	ActionCancel:    {from: []string{models.VisitWaiting, models.VisitOnHold}, to: models.VisitCancelled},
	ActionNoShow:    {from: []string{models.VisitWaiting}, to: models.VisitNoShow},
	ActionSkip:      {from: []string{models.VisitWaiting}, to: models.VisitSkipped},
	ActionCarryOver: {from: []string{models.VisitWaiting, models.VisitOnHold, models.VisitInProgress}, to: models.VisitCarryover},
	ActionReassign:  {from: []string{models.VisitWaiting, models.VisitOnHold}},
}

// nextStatus validates action against the current status and returns the
// resulting status. For status-preserving actions it returns current.
func nextStatus(action, current string) (string, error) {
	t, ok := transitionTable[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q from %s", domain.ErrInvalidTransition, action, current)
	}
	for _, from := range t.from {
		if from == current {
			if t.to == "" {
				return current, nil
			}
			return t.to, nil
		}
	}
	target := t.to
	if target == "" {
		target = current
	}
	return "", fmt.Errorf("%w: %s requires one of %v, visit is %s (requested %s)",
		domain.ErrInvalidTransition, action, t.from, current, target)
}
