package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

var (
	confirmationOnce    sync.Once
	confirmationBuilder StateMachineBuilder
)

// seedTriggers replay stored fields onto a fresh machine
var seedTriggers = []Trigger{TriggerRecord, TriggerResolve}

// ConfirmationBuilder returns the shared rule set of the IT incident
// confirmation lifecycle:
//
//	AWAITING_RESOLUTION --RESOLVE [resolved]--> AWAITING_CONFIRMATION
//	AWAITING_RESOLUTION, AWAITING_CONFIRMATION --RECORD [answered]--> CLOSED
//	AWAITING_CONFIRMATION --SUBMIT--> SUBMITTING
//	SUBMITTING --SUBMIT_SUCCEEDED--> CLOSED
//	SUBMITTING --SUBMIT_FAILED--> AWAITING_CONFIRMATION
func ConfirmationBuilder() StateMachineBuilder {
	confirmationOnce.Do(func() {
		b := NewBuilder()

		b.Configure(StateAwaitingResolution).
			PermitIf(TriggerRecord, StateClosed, answered).
			PermitIf(TriggerResolve, StateAwaitingConfirmation, resolved)

		b.Configure(StateAwaitingConfirmation).
			PermitIf(TriggerRecord, StateClosed, answered).
			Permit(TriggerSubmit, StateSubmitting)

		b.Configure(StateSubmitting).
			Permit(TriggerSubmitSucceed, StateClosed).
			Permit(TriggerSubmitFail, StateAwaitingConfirmation)

		confirmationBuilder = b
	})
	return confirmationBuilder
}

// SeedMachine builds the lifecycle of an incident from its stored fields:
// a recorded answer closes it, a Resolved status awaits confirmation.
func SeedMachine(ctx context.Context, sub entity.Submission) (StateMachine, error) {
	m := ConfirmationBuilder().Build(StateAwaitingResolution, sub)
	for _, trigger := range seedTriggers {
		if !m.CanFire(ctx, trigger) {
			continue
		}
		if err := m.Fire(ctx, trigger); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func answered(_ context.Context, sub entity.Submission) bool {
	return IsConfirmationRecorded(sub)
}

func resolved(_ context.Context, sub entity.Submission) bool {
	return IsResolved(sub)
}

// IsConfirmationRecorded reports whether the employee already confirmed or
// rejected the resolution
func IsConfirmationRecorded(sub entity.Submission) bool {
	status := sub.ConfirmationStatus()
	return strings.EqualFold(status, entity.ConfirmationConfirmed) ||
		strings.EqualFold(status, entity.ConfirmationRejected)
}

// IsResolved reports whether the ticket's overall status is Resolved
func IsResolved(sub entity.Submission) bool {
	return strings.EqualFold(sub.Status(), entity.IncidentStatusResolved)
}
