package port

import (
	"context"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// SubmissionRepository is the local cache of forms API submissions
type SubmissionRepository interface {
	// Upsert stores submissions of a form type keyed by their identifier and
	// returns the number written. Records without an identifier are skipped.
	Upsert(ctx context.Context, formType string, subs []entity.Submission) (int, error)
	// List returns all cached submissions of a form type, newest first
	List(ctx context.Context, formType string) ([]entity.Submission, error)
	// Get returns one submission, or nil when absent
	Get(ctx context.Context, formType, id string) (entity.Submission, error)
	// SetField replaces a single field of a stored submission in place
	SetField(ctx context.Context, formType, id, field string, value interface{}) error
}

// ActionRecordRepository logs confirmation dispatch attempts
type ActionRecordRepository interface {
	Create(ctx context.Context, record *entity.ActionRecord) error
	ListBySubmission(ctx context.Context, submissionID string) ([]*entity.ActionRecord, error)
}

// TransactionManager runs a function inside a database transaction carried
// by the context
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
