package workflow

import (
	"context"
	"fmt"
	"strings"

	"credentialing/internal/store"
	"credentialing/pkg/types"
)

// transitions is the authoritative table. Every non-terminal state moves to
// its successor or to closed; cleared and closed have no exits.
var transitions = map[types.CaseState][]types.CaseState{
	types.CaseStateOfferAccepted:          {types.CaseStateDocumentsRequested, types.CaseStateClosed},
	types.CaseStateDocumentsRequested:     {types.CaseStateDocumentsCollected, types.CaseStateClosed},
	types.CaseStateDocumentsCollected:     {types.CaseStateVerificationInProgress, types.CaseStateClosed},
	types.CaseStateVerificationInProgress: {types.CaseStateVerificationComplete, types.CaseStateClosed},
	types.CaseStateVerificationComplete:   {types.CaseStatePacketAssembled, types.CaseStateClosed},
	types.CaseStatePacketAssembled:        {types.CaseStateSubmitted, types.CaseStateClosed},
	types.CaseStateSubmitted:              {types.CaseStateCleared, types.CaseStateClosed},
	types.CaseStateCleared:                {},
	types.CaseStateClosed:                 {},
}

// Targets returns the legal next states from state.
func Targets(state types.CaseState) []types.CaseState {
	return append([]types.CaseState(nil), transitions[state]...)
}

// TransitionAllowed reports whether the table permits from -> to.
func TransitionAllowed(from, to types.CaseState) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// GuardError is returned by Transition when a move is refused. Structural
// refusals carry no blockers; content refusals carry the guard's blockers.
type GuardError struct {
	Message string
	Result  types.GuardResult
}

func (e *GuardError) Error() string {
	if len(e.Result.Blockers) == 0 {
		return e.Message
	}

	descriptions := make([]string, 0, len(e.Result.Blockers))
	for _, blocker := range e.Result.Blockers {
		descriptions = append(descriptions, blocker.Description)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(descriptions, "; "))
}

// Structural reports whether the transition table, not a content guard,
// refused the move.
func (e *GuardError) Structural() bool {
	return len(e.Result.Blockers) == 0
}

type Machine struct {
	repos   *store.Repositories
	sources GuardSources
}

func NewMachine(repos *store.Repositories) *Machine {
	return &Machine{
		repos: repos,
		sources: GuardSources{
			Cases:         repos.Cases,
			Documents:     repos.Documents,
			Verifications: repos.Verifications,
			Approvals:     repos.Approvals,
		},
	}
}

func (m *Machine) Sources() GuardSources {
	return m.sources
}

// CanTransition reports whether caseID may move to target right now. A
// missing case or a move the table forbids is refused with no blockers.
func (m *Machine) CanTransition(ctx context.Context, caseID string, target types.CaseState) (types.GuardResult, error) {
	c, err := m.repos.Cases.CaseByID(ctx, caseID)
	if err != nil {
		return types.GuardResult{}, err
	}
	if c == nil || !TransitionAllowed(c.State, target) {
		return types.Blocked(), nil
	}

	return CheckGuard(ctx, m.sources, caseID, target)
}

// Transition moves caseID to target and appends the audit event in one
// transaction. The structural check and the guard both run inside that
// transaction, and the state update only applies while the case is still in
// the state the guard saw.
func (m *Machine) Transition(ctx context.Context, caseID string, target types.CaseState, actor types.Principal) (*types.Case, error) {
	var updated *types.Case

	err := m.repos.Transaction(ctx, func(ctx context.Context) error {
		c, err := m.repos.Cases.CaseByID(ctx, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return &GuardError{Message: fmt.Sprintf("case not found: %s", caseID), Result: types.Blocked()}
		}

		from := c.State
		if !TransitionAllowed(from, target) {
			return &GuardError{
				Message: fmt.Sprintf("transition from %s to %s is not allowed", from, target),
				Result:  types.Blocked(),
			}
		}

		result, err := CheckGuard(ctx, m.sources, caseID, target)
		if err != nil {
			return err
		}
		if !result.Allowed {
			return &GuardError{
				Message: fmt.Sprintf("transition from %s to %s is blocked", from, target),
				Result:  result,
			}
		}

		applied, err := m.repos.Cases.UpdateCaseState(ctx, caseID, from, target)
		if err != nil {
			return err
		}
		if !applied {
			return &GuardError{
				Message: fmt.Sprintf("case %s changed state concurrently", caseID),
				Result:  types.Blocked(),
			}
		}

		event := &types.CaseEvent{
			CaseID:    caseID,
			EventType: types.EventTypeStateTransition,
			ActorType: actor.ActorType,
			ActorID:   actor.ActorID,
			Payload: types.JSONObject{
				"fromState": string(from),
				"toState":   string(target),
			},
		}
		if target == types.CaseStateClosed {
			event.EventType = types.EventTypeCaseClosed
			event.Payload["reason"] = "closed"
		}

		if err := m.repos.Events.AppendEvent(ctx, event); err != nil {
			return err
		}

		updated, err = m.repos.Cases.CaseByID(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
