package workflow

// Trigger is an event that moves the confirmation lifecycle
type Trigger string

const (
	// TriggerResolve applies once IT marks the ticket Resolved
	TriggerResolve Trigger = "RESOLVE"
	// TriggerRecord applies when the employee's answer is already stored
	TriggerRecord        Trigger = "RECORD"
	TriggerSubmit        Trigger = "SUBMIT"
	TriggerSubmitSucceed Trigger = "SUBMIT_SUCCEEDED"
	TriggerSubmitFail    Trigger = "SUBMIT_FAILED"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
