package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
)

// ActionRecordRepository implements port.ActionRecordRepository
type ActionRecordRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewActionRecordRepository creates a new action record repository
func NewActionRecordRepository(db *sqlite.DB, logger *zap.Logger) *ActionRecordRepository {
	return &ActionRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create logs one dispatch attempt and sets its ID
func (r *ActionRecordRepository) Create(ctx context.Context, record *entity.ActionRecord) error {
	query := `
		INSERT INTO confirmation_actions (
			request_id, submission_id, employee_id, action, notes,
			success, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var employeeID, errorMessage sql.NullString
	if record.EmployeeID != "" {
		employeeID = sql.NullString{String: record.EmployeeID, Valid: true}
	}
	if record.ErrorMessage != "" {
		errorMessage = sql.NullString{String: record.ErrorMessage, Valid: true}
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.RequestID,
		record.SubmissionID,
		employeeID,
		string(record.Action),
		record.Notes,
		record.Success,
		errorMessage,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create action record",
			zap.String("submission_id", record.SubmissionID),
			zap.String("request_id", record.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to create action record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	record.ID = id
	return nil
}

// ListBySubmission returns the dispatch attempts of a submission, oldest first
func (r *ActionRecordRepository) ListBySubmission(ctx context.Context, submissionID string) ([]*entity.ActionRecord, error) {
	query := `
		SELECT id, request_id, submission_id, employee_id, action, notes,
			success, error_message, created_at
		FROM confirmation_actions
		WHERE submission_id = ?
		ORDER BY id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to list action records", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list action records: %w", err)
	}
	defer rows.Close()

	records := []*entity.ActionRecord{}
	for rows.Next() {
		rec := &entity.ActionRecord{}
		var action string
		var employeeID, notes, errorMessage sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.SubmissionID,
			&employeeID,
			&action,
			&notes,
			&rec.Success,
			&errorMessage,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		rec.Action = entity.ConfirmationAction(action)
		rec.EmployeeID = employeeID.String
		rec.Notes = notes.String
		rec.ErrorMessage = errorMessage.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Verify interface compliance
var _ port.ActionRecordRepository = (*ActionRecordRepository)(nil)
