package entity

import "time"

// ConfirmationAction is the employee's response to a resolved IT incident
type ConfirmationAction string

const (
	ActionConfirmed ConfirmationAction = ConfirmationConfirmed
	ActionRejected  ConfirmationAction = ConfirmationRejected
)

// Default notes attached to confirmation commands
const (
	NoteConfirmed = "Employee confirmed: Problem is solved"
	NoteRejected  = "Employee reported: Problem not solved"
)

// IsValid reports whether the action is Confirmed or Rejected
func (a ConfirmationAction) IsValid() bool {
	return a == ActionConfirmed || a == ActionRejected
}

// String returns the string representation of the action
func (a ConfirmationAction) String() string {
	return string(a)
}

// DefaultNote returns the fixed note sent with the action
func (a ConfirmationAction) DefaultNote() string {
	if a == ActionRejected {
		return NoteRejected
	}
	return NoteConfirmed
}

// ConfirmationCommand is sent to the resolution action endpoint
type ConfirmationCommand struct {
	RequestID    string             `json:"request_id"`
	SubmissionID string             `json:"submission_id"`
	EmployeeID   string             `json:"employee_id"`
	Action       ConfirmationAction `json:"action"`
	Notes        string             `json:"notes"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ActionRecord is one logged dispatch attempt of a confirmation command
type ActionRecord struct {
	ID           int64              `json:"id"`
	RequestID    string             `json:"request_id"`
	SubmissionID string             `json:"submission_id"`
	EmployeeID   string             `json:"employee_id"`
	Action       ConfirmationAction `json:"action"`
	Notes        string             `json:"notes"`
	Success      bool               `json:"success"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
