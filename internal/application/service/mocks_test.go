package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// memSubmissionRepo is an in-memory SubmissionRepository
type memSubmissionRepo struct {
	mu      sync.Mutex
	data    map[string]map[string]entity.Submission
	listErr error
	setErr  error
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{data: make(map[string]map[string]entity.Submission)}
}

func (m *memSubmissionRepo) Upsert(ctx context.Context, formType string, subs []entity.Submission) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[formType] == nil {
		m.data[formType] = make(map[string]entity.Submission)
	}
	n := 0
	for _, s := range subs {
		id, ok := s.ID()
		if !ok {
			continue
		}
		m.data[formType][id] = s.Clone()
		n++
	}
	return n, nil
}

func (m *memSubmissionRepo) List(ctx context.Context, formType string) ([]entity.Submission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data[formType]))
	for id := range m.data[formType] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]entity.Submission, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.data[formType][id].Clone())
	}
	return out, nil
}

func (m *memSubmissionRepo) Get(ctx context.Context, formType, id string) (entity.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.data[formType][id]
	if !ok {
		return nil, nil
	}
	return sub.Clone(), nil
}

func (m *memSubmissionRepo) SetField(ctx context.Context, formType, id, field string, value interface{}) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.data[formType][id]
	if !ok {
		return errors.New("not found")
	}
	sub[field] = value
	return nil
}

type mockActionRecordRepo struct {
	mu        sync.Mutex
	records   []*entity.ActionRecord
	createErr error
}

func (m *mockActionRecordRepo) Create(ctx context.Context, rec *entity.ActionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *mockActionRecordRepo) ListBySubmission(ctx context.Context, id string) ([]*entity.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.ActionRecord{}
	for _, r := range m.records {
		if r.SubmissionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockActionClient struct {
	mu       sync.Mutex
	calls    []entity.ConfirmationCommand
	submitFn func(ctx context.Context, cmd entity.ConfirmationCommand) (*port.ActionResult, error)
}

func (m *mockActionClient) SubmitResolutionAction(ctx context.Context, cmd entity.ConfirmationCommand) (*port.ActionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()
	if m.submitFn != nil {
		return m.submitFn(ctx, cmd)
	}
	return &port.ActionResult{Success: true}, nil
}

func (m *mockActionClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Info(string, ...interface{}) {}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}
