package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Category
	}{
		{"Approved", CategoryResolve},
		{"completed", CategoryResolve},
		{"CLOSED", CategoryResolve},
		{"Resolved", CategoryResolve},
		{"UPDATED", CategoryUpdate},
		{"In Progress", CategoryInProgress},
		{"assigned", CategoryInProgress},
		{"Processing", CategoryInProgress},
		{"Rejected", CategoryClose},
		{"cancelled", CategoryClose},
		{"Open", CategoryOpen},
		{"new", CategoryOpen},
		{"Pending", CategoryPending},
		{"submitted", CategoryPending},
		{"", CategoryPending},
		{"   ", CategoryPending},
		{"on hold", CategoryPending},
		{" open ", CategoryOpen},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func TestClassify_Submission(t *testing.T) {
	assert.Equal(t, CategoryUpdate, Classify(entity.Submission{"status": "UPDATED"}))
	assert.Equal(t, CategoryPending, Classify(entity.Submission{"status": nil}))
	assert.Equal(t, CategoryPending, Classify(entity.Submission{}))
	assert.Equal(t, CategoryPending, Classify(nil))
}

func TestClassify_IndependentOfPipeline(t *testing.T) {
	sub := entity.Submission{"id": 1, "status": "Open", "line_manager_approval": "Pending"}

	view := NewResolver(DefaultRegistry()).Resolve(sub, entity.FormLeaveRequest)
	assert.Equal(t, OutcomeInProgress, view.OverallOutcome)
	assert.Equal(t, CategoryOpen, Classify(sub))
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("in progress")
	assert.True(t, ok)
	assert.Equal(t, CategoryInProgress, c)

	c, ok = ParseCategory("InProgress")
	assert.True(t, ok)
	assert.Equal(t, CategoryInProgress, c)

	_, ok = ParseCategory("archived")
	assert.False(t, ok)
}
