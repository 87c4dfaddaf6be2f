package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
	"github.com/garyjia/hr-portal/internal/domain/workflow"
)

// ConfirmationStatus is the lifecycle view of one IT incident
type ConfirmationStatus struct {
	SubmissionID       string                 `json:"submission_id"`
	State              workflow.State         `json:"state"`
	ConfirmationStatus string                 `json:"employee_confirmation_status,omitempty"`
	CanAct             bool                   `json:"can_act"`
	History            []*entity.ActionRecord `json:"history"`
}

// ConfirmationService runs the employee confirmation loop on resolved IT
// incidents
type ConfirmationService interface {
	// State reports the lifecycle state: the tracked machine while a dispatch
	// is outstanding or after one succeeded, otherwise one seeded from the
	// stored fields
	State(sub entity.Submission) workflow.State
	// BuildConfirmationCommand constructs the command for an action without
	// dispatching it
	BuildConfirmationCommand(sub entity.Submission, action entity.ConfirmationAction) (entity.ConfirmationCommand, error)
	// Submit dispatches the action exactly once and, on success, records the
	// confirmation status on the cached submission
	Submit(ctx context.Context, submissionID, employeeID string, action entity.ConfirmationAction) (*entity.ConfirmationCommand, error)
	// Status returns the lifecycle state and action history of an incident
	Status(ctx context.Context, submissionID string) (*ConfirmationStatus, error)
}

type confirmationServiceImpl struct {
	repo    port.SubmissionRepository
	records port.ActionRecordRepository
	client  port.ResolutionActionClient
	events  dispatcher.Dispatcher
	logger  Logger
	now     func() time.Time

	// machines holds the lifecycles this process drove: SUBMITTING while a
	// dispatch is outstanding, CLOSED once one succeeded
	mu       sync.Mutex
	machines map[string]workflow.StateMachine
}

// NewConfirmationService creates a new ConfirmationService. records and events
// may be nil.
func NewConfirmationService(
	repo port.SubmissionRepository,
	records port.ActionRecordRepository,
	client port.ResolutionActionClient,
	events dispatcher.Dispatcher,
	logger Logger,
) ConfirmationService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &confirmationServiceImpl{
		repo:     repo,
		records:  records,
		client:   client,
		events:   events,
		logger:   logger,
		now:      time.Now,
		machines: make(map[string]workflow.StateMachine),
	}
}

func (s *confirmationServiceImpl) State(sub entity.Submission) workflow.State {
	state, err := s.stateOf(context.Background(), sub)
	if err != nil {
		id, _ := sub.ID()
		s.logger.Error("Failed to derive confirmation state", "submission_id", id, "error", err)
		return workflow.StateAwaitingResolution
	}
	return state
}

func (s *confirmationServiceImpl) BuildConfirmationCommand(sub entity.Submission, action entity.ConfirmationAction) (entity.ConfirmationCommand, error) {
	if !action.IsValid() {
		return entity.ConfirmationCommand{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	id, ok := sub.ID()
	if !ok {
		return entity.ConfirmationCommand{}, fmt.Errorf("%w: submission has no identifier", ErrSubmissionNotFound)
	}

	state, err := s.stateOf(context.Background(), sub)
	if err != nil {
		return entity.ConfirmationCommand{}, err
	}
	if state == workflow.StateSubmitting {
		return entity.ConfirmationCommand{}, fmt.Errorf("%w: %s", ErrDispatchInFlight, id)
	}
	if !state.AcceptsAction() {
		return entity.ConfirmationCommand{}, fmt.Errorf("%w: %s is %s", ErrNotAwaitingConfirmation, id, state)
	}

	return entity.ConfirmationCommand{
		RequestID:    uuid.NewString(),
		SubmissionID: id,
		EmployeeID:   sub.EmployeeID(),
		Action:       action,
		Notes:        action.DefaultNote(),
		CreatedAt:    s.now(),
	}, nil
}

func (s *confirmationServiceImpl) Submit(ctx context.Context, submissionID, employeeID string, action entity.ConfirmationAction) (*entity.ConfirmationCommand, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	sub, err := s.repo.Get(ctx, entity.FormITIncident, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
	}

	cmd, err := s.BuildConfirmationCommand(sub, action)
	if err != nil {
		return nil, err
	}
	if employeeID != "" {
		cmd.EmployeeID = employeeID
	}

	machine, err := s.begin(ctx, sub, cmd.SubmissionID)
	if err != nil {
		return nil, err
	}
	settled := false
	defer func() {
		if !settled {
			s.forget(cmd.SubmissionID)
		}
	}()

	submitted := event.NewEvent(event.TypeConfirmationSubmitted, entity.FormITIncident, cmd.SubmissionID, map[string]interface{}{
		"action":     cmd.Action.String(),
		"request_id": cmd.RequestID,
	})
	s.publish(ctx, submitted)

	// Once dispatched the command runs to completion regardless of the caller
	start := s.now()
	dispatchErr := s.dispatch(context.WithoutCancel(ctx), cmd)
	elapsed := s.now().Sub(start)

	s.record(ctx, cmd, dispatchErr)

	if dispatchErr != nil {
		if err := s.finish(ctx, cmd.SubmissionID, machine, workflow.TriggerSubmitFail); err != nil {
			dispatchErr = errors.Join(dispatchErr, err)
		}
		settled = true
		s.logger.Error("Confirmation dispatch failed",
			"submission_id", cmd.SubmissionID,
			"action", cmd.Action,
			"state", machine.State(),
			"error", dispatchErr)
		s.publish(ctx, submitted.Follow(event.TypeConfirmationFailed, map[string]interface{}{
			"action":      cmd.Action.String(),
			"error":       dispatchErr.Error(),
			"duration_ms": elapsed.Milliseconds(),
		}))
		return nil, dispatchErr
	}

	if err := s.finish(ctx, cmd.SubmissionID, machine, workflow.TriggerSubmitSucceed); err != nil {
		s.logger.Error("Failed to close confirmation lifecycle", "submission_id", cmd.SubmissionID, "error", err)
	}
	settled = true

	// Optimistic local update; the next reload from the forms API confirms it.
	// The closed machine keeps the incident answered if this write fails.
	if err := s.repo.SetField(ctx, entity.FormITIncident, cmd.SubmissionID, entity.FieldEmployeeConfirmationStatus, cmd.Action.String()); err != nil {
		s.logger.Error("Failed to record confirmation status locally",
			"submission_id", cmd.SubmissionID,
			"error", err)
	}

	s.logger.Info("Confirmation dispatched",
		"submission_id", cmd.SubmissionID,
		"action", cmd.Action,
		"request_id", cmd.RequestID,
		"state", machine.State())
	s.publish(ctx, submitted.Follow(event.TypeConfirmationSucceeded, map[string]interface{}{
		"action":      cmd.Action.String(),
		"duration_ms": elapsed.Milliseconds(),
	}))

	return &cmd, nil
}

func (s *confirmationServiceImpl) Status(ctx context.Context, submissionID string) (*ConfirmationStatus, error) {
	sub, err := s.repo.Get(ctx, entity.FormITIncident, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
	}

	state := s.State(sub)
	status := &ConfirmationStatus{
		SubmissionID:       submissionID,
		State:              state,
		ConfirmationStatus: sub.ConfirmationStatus(),
		CanAct:             state.AcceptsAction(),
		History:            []*entity.ActionRecord{},
	}

	if s.records != nil {
		history, err := s.records.ListBySubmission(ctx, submissionID)
		if err != nil {
			return nil, fmt.Errorf("list action history: %w", err)
		}
		status.History = history
	}
	return status, nil
}

func (s *confirmationServiceImpl) dispatch(ctx context.Context, cmd entity.ConfirmationCommand) error {
	result, err := s.client.SubmitResolutionAction(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	if result == nil || !result.Success {
		msg := "no result"
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		return fmt.Errorf("%w: %s", ErrActionRejected, msg)
	}
	return nil
}

func (s *confirmationServiceImpl) record(ctx context.Context, cmd entity.ConfirmationCommand, dispatchErr error) {
	if s.records == nil {
		return
	}

	rec := &entity.ActionRecord{
		RequestID:    cmd.RequestID,
		SubmissionID: cmd.SubmissionID,
		EmployeeID:   cmd.EmployeeID,
		Action:       cmd.Action,
		Notes:        cmd.Notes,
		Success:      dispatchErr == nil,
		CreatedAt:    s.now(),
	}
	if dispatchErr != nil {
		rec.ErrorMessage = dispatchErr.Error()
	}

	if err := s.records.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error("Failed to log confirmation action", "submission_id", cmd.SubmissionID, "error", err)
	}
}

// stateOf returns the tracked machine's state, or seeds one from the stored
// fields
func (s *confirmationServiceImpl) stateOf(ctx context.Context, sub entity.Submission) (workflow.State, error) {
	if id, ok := sub.ID(); ok {
		s.mu.Lock()
		m, tracked := s.machines[id]
		var state workflow.State
		if tracked {
			state = m.State()
		}
		s.mu.Unlock()
		if tracked {
			return state, nil
		}
	}

	m, err := workflow.SeedMachine(ctx, sub)
	if err != nil {
		return "", err
	}
	return m.State(), nil
}

// begin moves the incident into SUBMITTING and tracks its machine. Only one
// caller per incident gets past it until the dispatch settles.
func (s *confirmationServiceImpl) begin(ctx context.Context, sub entity.Submission, id string) (workflow.StateMachine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, tracked := s.machines[id]; tracked {
		if m.State() == workflow.StateSubmitting {
			return nil, fmt.Errorf("%w: %s", ErrDispatchInFlight, id)
		}
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAwaitingConfirmation, id, m.State())
	}

	m, err := workflow.SeedMachine(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := m.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAwaitingConfirmation, id, m.State())
	}
	s.machines[id] = m
	return m, nil
}

// finish settles a dispatch. A closed machine stays tracked, anything else
// is dropped so the next read reseeds from the stored fields.
func (s *confirmationServiceImpl) finish(ctx context.Context, id string, m workflow.StateMachine, trigger workflow.Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := m.Fire(ctx, trigger)
	if err != nil || m.State() != workflow.StateClosed {
		delete(s.machines, id)
	}
	return err
}

func (s *confirmationServiceImpl) forget(id string) {
	s.mu.Lock()
	delete(s.machines, id)
	s.mu.Unlock()
}

func (s *confirmationServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.DispatchAsync(context.WithoutCancel(ctx), evt)
	}
}
