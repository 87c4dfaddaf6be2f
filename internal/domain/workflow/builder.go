package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// GuardFunc decides from the incident's stored fields whether a configured
// transition may be taken
type GuardFunc func(ctx context.Context, sub entity.Submission) bool

// StateMachineBuilder collects transition rules and stamps out machines
type StateMachineBuilder interface {
	// Configure returns the rule set for transitions leaving state
	Configure(state State) StateConfiguration

	// Build returns an independent machine for sub positioned at initialState
	Build(initialState State, sub entity.Submission) StateMachine
}

// StateConfiguration declares the transitions leaving one state
type StateConfiguration interface {
	// Permit allows trigger to move to toState unconditionally
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move to toState when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

// transitionTable maps source state -> trigger -> candidate transitions,
// tried in declaration order
type transitionTable map[State]map[Trigger][]transition

type stateConfig struct {
	from  State
	table transitionTable
}

type stateMachineBuilder struct {
	table transitionTable
}

type stateMachine struct {
	current State
	subject entity.Submission
	table   transitionTable
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{table: make(transitionTable)}
}

// Configure panics on unknown states; rules are static program data
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.table[state]; !ok {
		b.table[state] = make(map[Trigger][]transition)
	}
	return &stateConfig{from: state, table: b.table}
}

// Build snapshots the current rules so later Configure calls do not leak into
// machines already built
func (b *stateMachineBuilder) Build(initialState State, sub entity.Submission) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	snapshot := make(transitionTable, len(b.table))
	for from, triggers := range b.table {
		snapshot[from] = make(map[Trigger][]transition, len(triggers))
		for trig, ts := range triggers {
			snapshot[from][trig] = append([]transition(nil), ts...)
		}
	}

	return &stateMachine{current: initialState, subject: sub, table: snapshot}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.table[c.from][trigger] = append(c.table[c.from][trigger], transition{toState: toState, guard: guard})
	return c
}

func (m *stateMachine) State() State {
	return m.current
}

// next returns the first candidate transition whose guard passes
func (m *stateMachine) next(ctx context.Context, trigger Trigger) (transition, error) {
	candidates := m.table[m.current][trigger]
	if len(candidates) == 0 {
		return transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	for _, t := range candidates {
		if t.guard == nil || t.guard(ctx, m.subject) {
			return t, nil
		}
	}
	return transition{}, fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

// CanFire evaluates guards without changing state
func (m *stateMachine) CanFire(ctx context.Context, trigger Trigger) bool {
	_, err := m.next(ctx, trigger)
	return err == nil
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	t, err := m.next(ctx, trigger)
	if err != nil {
		return err
	}
	m.current = t.toState
	return nil
}
