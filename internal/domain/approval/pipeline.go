package approval

import "github.com/garyjia/hr-portal/internal/domain/entity"

// Outcome is the overall result of a pipeline
type Outcome string

const (
	OutcomeApproved   Outcome = "Approved"
	OutcomeRejected   Outcome = "Rejected"
	OutcomeInProgress Outcome = "InProgress"
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// Next-stage labels for finished pipelines
const (
	NextStageCompleted = "Completed"
	NextStageRejected  = "Rejected - No Further Action"
)

// Labels of synthesized single-stage pipelines
const (
	LabelOverallStatus = "Status"
	LabelUnknown       = "Unknown"
)

// PipelineView is the resolved approval pipeline of one submission
type PipelineView struct {
	SubmissionID    string        `json:"submission_id,omitempty"`
	FormType        string        `json:"form_type"`
	Stages          []StageStatus `json:"stages"`
	NextStageLabel  string        `json:"next_stage_label"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	OverallOutcome  Outcome       `json:"overall_outcome"`
}

// Resolver derives pipeline views using a schema registry
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver. A nil registry resolves every form type
// through the generic single-stage fallback.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry returns the resolver's schema registry
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve never fails: malformed records yield a single Pending "Unknown"
// stage and unknown form types a single stage built from the overall status.
func (r *Resolver) Resolve(sub entity.Submission, formType string) PipelineView {
	id, ok := sub.ID()
	if sub == nil || !ok {
		return unknownPipeline(formType)
	}

	specs := r.registry.StagesFor(formType)
	if len(specs) == 0 {
		specs = []StageSpec{{
			FieldName: entity.FieldStatus,
			Label:     LabelOverallStatus,
			Encoding:  EncodingStatusMap,
			StatusMap: GenericStatusMap,
		}}
	}

	view := PipelineView{
		SubmissionID: id,
		FormType:     formType,
		Stages:       make([]StageStatus, 0, len(specs)),
	}

	rejected := false
	for _, spec := range specs {
		if rejected {
			// Rejection is terminal: later stages are shown but never evaluated
			view.Stages = append(view.Stages, StageStatus{Label: spec.Label, Value: StatusPending, Skipped: true})
			continue
		}

		status := Normalize(sub, spec)
		if status.Value == StatusRejected {
			rejected = true
			view.RejectionReason = status.Reason
		}
		view.Stages = append(view.Stages, status)
	}

	view.NextStageLabel, view.OverallOutcome = summarize(view.Stages, rejected)
	return view
}

// ResolveAll resolves a list of submissions, preserving order
func (r *Resolver) ResolveAll(subs []entity.Submission, formType string) []PipelineView {
	views := make([]PipelineView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, r.Resolve(sub, formType))
	}
	return views
}

func summarize(stages []StageStatus, rejected bool) (string, Outcome) {
	if rejected {
		return NextStageRejected, OutcomeRejected
	}
	for _, st := range stages {
		if st.Value == StatusPending {
			return st.Label, OutcomeInProgress
		}
	}
	return NextStageCompleted, OutcomeApproved
}

func unknownPipeline(formType string) PipelineView {
	return PipelineView{
		FormType:       formType,
		Stages:         []StageStatus{{Label: LabelUnknown, Value: StatusPending}},
		NextStageLabel: LabelUnknown,
		OverallOutcome: OutcomeInProgress,
	}
}

// IsComplete reports whether every stage is approved
func (v PipelineView) IsComplete() bool {
	return v.OverallOutcome == OutcomeApproved
}

// StageByLabel returns the first stage with the given label
func (v PipelineView) StageByLabel(label string) (StageStatus, bool) {
	for _, st := range v.Stages {
		if st.Label == label {
			return st, true
		}
	}
	return StageStatus{}, false
}
