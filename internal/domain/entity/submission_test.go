package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_ID(t *testing.T) {
	tests := []struct {
		name   string
		sub    Submission
		wantID string
		wantOK bool
	}{
		{"request_id preferred", Submission{"request_id": "REQ-1", "id": 7}, "REQ-1", true},
		{"numeric id", Submission{"id": float64(42)}, "42", true},
		{"blank request_id falls back", Submission{"request_id": "  ", "id": "9"}, "9", true},
		{"missing", Submission{"status": "Open"}, "", false},
		{"nil id", Submission{"id": nil}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.sub.ID()
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSubmission_Bool(t *testing.T) {
	sub := Submission{"a": true, "b": false, "c": "true", "d": nil, "e": "maybe"}

	v, ok := sub.Bool("a")
	assert.True(t, v)
	assert.True(t, ok)

	v, ok = sub.Bool("b")
	assert.False(t, v)
	assert.True(t, ok)

	v, ok = sub.Bool("c")
	assert.True(t, v)
	assert.True(t, ok)

	_, ok = sub.Bool("d")
	assert.False(t, ok)

	_, ok = sub.Bool("e")
	assert.False(t, ok)

	_, ok = sub.Bool("missing")
	assert.False(t, ok)
}

func TestSubmission_CreatedAt(t *testing.T) {
	sub := Submission{"created_at": "2026-03-04T10:11:12Z"}
	assert.Equal(t, time.Date(2026, 3, 4, 10, 11, 12, 0, time.UTC), sub.CreatedAt().UTC())

	assert.Equal(t, int64(0), Submission{}.CreatedAt().Unix())
	assert.Equal(t, int64(0), Submission{"created_at": "not a date"}.CreatedAt().Unix())
	assert.Equal(t, int64(0), Submission{"created_at": ""}.CreatedAt().Unix())
}

func TestParseTimestamp_HourOffset(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-05-01 10:00:00.123+00", time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)},
		{"2024-05-01 10:00:00+02", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00.5-05", time.Date(2024, 5, 1, 15, 0, 0, 500000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseTimestamp(tt.raw)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseSubmissions(t *testing.T) {
	subs, err := ParseSubmissions([]byte(`[{"id": 1, "status": "Open", "line_manager_approval": null}]`))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Open", subs[0].Status())
	assert.False(t, subs[0].Has("line_manager_approval"))

	_, err = ParseSubmissions([]byte(`{"id": 1}`))
	assert.Error(t, err)
}

func TestSubmission_FieldsSorted(t *testing.T) {
	sub := Submission{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, sub.Fields())
}

func TestConfirmationAction(t *testing.T) {
	assert.True(t, ActionConfirmed.IsValid())
	assert.True(t, ActionRejected.IsValid())
	assert.False(t, ConfirmationAction("Maybe").IsValid())
	assert.Equal(t, NoteConfirmed, ActionConfirmed.DefaultNote())
	assert.Equal(t, NoteRejected, ActionRejected.DefaultNote())
}
