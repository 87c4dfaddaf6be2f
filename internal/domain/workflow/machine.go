package workflow

import "context"

// StateMachine tracks the confirmation lifecycle of one incident
type StateMachine interface {
	State() State
	CanFire(ctx context.Context, trigger Trigger) bool
	Fire(ctx context.Context, trigger Trigger) error
}
