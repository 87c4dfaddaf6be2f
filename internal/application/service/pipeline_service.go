package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
	"github.com/garyjia/hr-portal/internal/domain/workflow"
)

// Filter narrows a submission list. Zero values match everything.
type Filter struct {
	Category approval.Category
	Range    approval.DateRange
}

// ResolvedSubmission pairs a raw submission with its derived views
type ResolvedSubmission struct {
	Submission entity.Submission     `json:"submission"`
	Pipeline   approval.PipelineView `json:"pipeline"`
	Category   approval.Category     `json:"category"`
	CreatedAt  time.Time             `json:"created_at"`
	// Confirmation is set for IT incidents only
	Confirmation workflow.State `json:"confirmation_state,omitempty"`
}

// Summary counts a form type's submissions by bucket and outcome
type Summary struct {
	FormType   string                    `json:"form_type"`
	Total      int                       `json:"total"`
	ByCategory map[approval.Category]int `json:"by_category"`
	ByOutcome  map[approval.Outcome]int  `json:"by_outcome"`
}

// ConfirmationStater reports the confirmation lifecycle state of an incident
type ConfirmationStater interface {
	State(sub entity.Submission) workflow.State
}

// PipelineService resolves and filters cached submissions
type PipelineService interface {
	Resolve(sub entity.Submission, formType string) approval.PipelineView
	List(ctx context.Context, formType string, filter Filter) ([]ResolvedSubmission, error)
	Get(ctx context.Context, formType, id string) (*ResolvedSubmission, error)
	Summary(ctx context.Context, formType string, filter Filter) (*Summary, error)
	Import(ctx context.Context, formType string, subs []entity.Submission) (int, error)
	Registry() *approval.Registry
}

type pipelineServiceImpl struct {
	resolver     *approval.Resolver
	dates        *approval.DateMatcher
	repo         port.SubmissionRepository
	confirmation ConfirmationStater
	events       dispatcher.Dispatcher
	logger       Logger
}

// PipelineOption configures the pipeline service
type PipelineOption func(*pipelineServiceImpl)

// WithDateMatcher overrides the wall-clock date matcher
func WithDateMatcher(m *approval.DateMatcher) PipelineOption {
	return func(s *pipelineServiceImpl) { s.dates = m }
}

// WithConfirmationStater attaches IT incident lifecycle states to results
func WithConfirmationStater(c ConfirmationStater) PipelineOption {
	return func(s *pipelineServiceImpl) { s.confirmation = c }
}

// WithPipelineEvents publishes resolution events
func WithPipelineEvents(d dispatcher.Dispatcher) PipelineOption {
	return func(s *pipelineServiceImpl) { s.events = d }
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(
	registry *approval.Registry,
	repo port.SubmissionRepository,
	logger Logger,
	opts ...PipelineOption,
) PipelineService {
	if logger == nil {
		logger = nopLogger{}
	}
	s := &pipelineServiceImpl{
		resolver: approval.NewResolver(registry),
		dates:    approval.NewDateMatcher(nil),
		repo:     repo,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *pipelineServiceImpl) Registry() *approval.Registry {
	return s.resolver.Registry()
}

func (s *pipelineServiceImpl) Resolve(sub entity.Submission, formType string) approval.PipelineView {
	return s.resolver.Resolve(sub, formType)
}

// List resolves every cached submission and applies the filter. A record that
// cannot be resolved still appears with an "Unknown" pipeline.
func (s *pipelineServiceImpl) List(ctx context.Context, formType string, filter Filter) ([]ResolvedSubmission, error) {
	subs, err := s.repo.List(ctx, formType)
	if err != nil {
		s.logger.Error("Failed to list submissions", "form_type", formType, "error", err)
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	results := make([]ResolvedSubmission, 0, len(subs))
	outcomes := make(map[string]int)
	for _, sub := range subs {
		if !s.matches(sub, filter) {
			continue
		}
		rs := s.resolveOne(sub, formType)
		outcomes[rs.Pipeline.OverallOutcome.String()]++
		results = append(results, rs)
	}

	s.publish(ctx, event.NewEvent(event.TypePipelineResolved, formType, "", map[string]interface{}{
		"count":    len(results),
		"outcomes": outcomes,
	}))

	return results, nil
}

func (s *pipelineServiceImpl) Get(ctx context.Context, formType, id string) (*ResolvedSubmission, error) {
	sub, err := s.repo.Get(ctx, formType, id)
	if err != nil {
		s.logger.Error("Failed to get submission", "form_type", formType, "id", id, "error", err)
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrSubmissionNotFound, formType, id)
	}

	rs := s.resolveOne(sub, formType)
	return &rs, nil
}

func (s *pipelineServiceImpl) Summary(ctx context.Context, formType string, filter Filter) (*Summary, error) {
	resolved, err := s.List(ctx, formType, filter)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		FormType:   formType,
		Total:      len(resolved),
		ByCategory: make(map[approval.Category]int, len(approval.Categories)),
		ByOutcome:  make(map[approval.Outcome]int, 3),
	}
	for _, c := range approval.Categories {
		summary.ByCategory[c] = 0
	}
	for _, rs := range resolved {
		summary.ByCategory[rs.Category]++
		summary.ByOutcome[rs.Pipeline.OverallOutcome]++
	}
	return summary, nil
}

func (s *pipelineServiceImpl) Import(ctx context.Context, formType string, subs []entity.Submission) (int, error) {
	if strings.TrimSpace(formType) == "" {
		return 0, fmt.Errorf("form type is required")
	}

	n, err := s.repo.Upsert(ctx, formType, subs)
	if err != nil {
		s.logger.Error("Failed to import submissions", "form_type", formType, "error", err)
		return 0, fmt.Errorf("import submissions: %w", err)
	}

	s.logger.Info("Submissions imported", "form_type", formType, "received", len(subs), "stored", n)
	s.publish(ctx, event.NewEvent(event.TypeSubmissionsImported, formType, "", map[string]interface{}{
		"received": len(subs),
		"stored":   n,
	}))
	return n, nil
}

func (s *pipelineServiceImpl) matches(sub entity.Submission, filter Filter) bool {
	if filter.Category != "" && approval.Classify(sub) != filter.Category {
		return false
	}
	return s.dates.MatchesSubmission(sub, filter.Range)
}

func (s *pipelineServiceImpl) resolveOne(sub entity.Submission, formType string) ResolvedSubmission {
	rs := ResolvedSubmission{
		Submission: sub,
		Pipeline:   s.resolver.Resolve(sub, formType),
		Category:   approval.Classify(sub),
		CreatedAt:  sub.CreatedAt(),
	}
	if s.confirmation != nil && strings.EqualFold(formType, entity.FormITIncident) {
		rs.Confirmation = s.confirmation.State(sub)
	}
	return rs
}

func (s *pipelineServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.DispatchAsync(ctx, evt)
	}
}
