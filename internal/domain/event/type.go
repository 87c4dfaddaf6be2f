package event

// Type identifies the type of domain event
type Type string

const (
	TypePipelineResolved      Type = "pipeline.resolved"
	TypeSubmissionsImported   Type = "submissions.imported"
	TypeConfirmationSubmitted Type = "confirmation.submitted"
	TypeConfirmationSucceeded Type = "confirmation.succeeded"
	TypeConfirmationFailed    Type = "confirmation.failed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypePipelineResolved,
		TypeSubmissionsImported,
		TypeConfirmationSubmitted,
		TypeConfirmationSucceeded,
		TypeConfirmationFailed:
		return true
	default:
		return false
	}
}
