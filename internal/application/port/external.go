package port

import (
	"context"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// ActionResult is the forms API's answer to a resolution action
type ActionResult struct {
	Success bool
	Message string
}

// ResolutionActionClient posts employee confirm/reject actions on resolved
// IT incidents ("confirm-problem-solved" / "reject-resolution")
type ResolutionActionClient interface {
	SubmitResolutionAction(ctx context.Context, cmd entity.ConfirmationCommand) (*ActionResult, error)
}

// SubmissionSource lists the raw submissions of one form type from the
// upstream forms API
type SubmissionSource interface {
	FetchSubmissions(ctx context.Context, formType string) ([]entity.Submission, error)
}
