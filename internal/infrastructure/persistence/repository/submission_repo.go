package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
)

// ErrNotFound is returned when a row to update does not exist
var ErrNotFound = errors.New("record not found")

// SubmissionRepository implements port.SubmissionRepository on SQLite. The
// raw record is stored as JSON so unknown fields survive the round trip.
type SubmissionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sqlite.DB, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

func normalizeFormType(formType string) string {
	return strings.ToLower(strings.TrimSpace(formType))
}

// Upsert stores submissions keyed by (form type, id) in one transaction
func (r *SubmissionRepository) Upsert(ctx context.Context, formType string, subs []entity.Submission) (int, error) {
	formType = normalizeFormType(formType)
	query := `
		INSERT INTO submissions (form_type, submission_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (form_type, submission_id) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			updated_at = CURRENT_TIMESTAMP
	`

	stored := 0
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		for _, sub := range subs {
			id, ok := sub.ID()
			if !ok {
				r.logger.Debug("Skipping submission without identifier", zap.String("form_type", formType))
				continue
			}

			payload, err := json.Marshal(sub)
			if err != nil {
				return fmt.Errorf("failed to encode submission %s: %w", id, err)
			}

			if _, err := r.db.Executor(ctx).ExecContext(ctx, query, formType, id, string(payload), sub.CreatedAt().UTC()); err != nil {
				r.logger.Error("Failed to upsert submission",
					zap.String("form_type", formType),
					zap.String("submission_id", id),
					zap.Error(err))
				return fmt.Errorf("failed to upsert submission %s: %w", id, err)
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// List returns the cached submissions of a form type, newest first
func (r *SubmissionRepository) List(ctx context.Context, formType string) ([]entity.Submission, error) {
	query := `
		SELECT submission_id, payload FROM submissions
		WHERE form_type = ?
		ORDER BY created_at DESC, submission_id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, normalizeFormType(formType))
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.String("form_type", formType), zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []entity.Submission{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub, err := decodeSubmission(payload)
		if err != nil {
			r.logger.Warn("Skipping undecodable submission", zap.String("submission_id", id), zap.Error(err))
			continue
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Get returns one submission, or nil when it is not cached
func (r *SubmissionRepository) Get(ctx context.Context, formType, id string) (entity.Submission, error) {
	query := `SELECT payload FROM submissions WHERE form_type = ? AND submission_id = ?`

	var payload string
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, normalizeFormType(formType), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission",
			zap.String("form_type", formType),
			zap.String("submission_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return decodeSubmission(payload)
}

// SetField rewrites one field of a stored submission
func (r *SubmissionRepository) SetField(ctx context.Context, formType, id, field string, value interface{}) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		sub, err := r.Get(ctx, formType, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, formType, id)
		}

		sub[field] = value
		payload, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("failed to encode submission %s: %w", id, err)
		}

		query := `
			UPDATE submissions SET payload = ?, updated_at = CURRENT_TIMESTAMP
			WHERE form_type = ? AND submission_id = ?
		`
		if _, err := r.db.Executor(ctx).ExecContext(ctx, query, string(payload), normalizeFormType(formType), id); err != nil {
			r.logger.Error("Failed to update submission field",
				zap.String("submission_id", id),
				zap.String("field", field),
				zap.Error(err))
			return fmt.Errorf("failed to update submission: %w", err)
		}
		return nil
	})
}

// Count returns the number of cached submissions per form type
func (r *SubmissionRepository) Count(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `SELECT form_type, COUNT(*) FROM submissions GROUP BY form_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var formType string
		var n int
		if err := rows.Scan(&formType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[formType] = n
	}
	return counts, rows.Err()
}

func decodeSubmission(payload string) (entity.Submission, error) {
	var sub entity.Submission
	if err := json.Unmarshal([]byte(payload), &sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	return sub, nil
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
