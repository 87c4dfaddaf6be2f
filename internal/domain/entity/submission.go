package entity

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Submission is a raw form submission as returned by the forms API.
// Field names and value types differ per form type; values are string,
// number, bool or nil.
type Submission map[string]interface{}

// Identifying and common field names present on every submission
const (
	FieldID                         = "id"
	FieldRequestID                  = "request_id"
	FieldCreatedAt                  = "created_at"
	FieldStatus                     = "status"
	FieldEmployeeID                 = "employee_id"
	FieldEmployeeConfirmationStatus = "employee_confirmation_status"

	// RejectedReasonSuffix marks per-stage rejection reason fields
	RejectedReasonSuffix = "_rejected_reason"
)

// ParseSubmissions decodes a JSON array of submission records
func ParseSubmissions(data []byte) ([]Submission, error) {
	var subs []Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ID returns the submission identifier, preferring request_id over id.
// The boolean is false when neither field carries a usable value.
func (s Submission) ID() (string, bool) {
	for _, key := range []string{FieldRequestID, FieldID} {
		if id := s.String(key); id != "" {
			return id, true
		}
	}
	return "", false
}

// Has reports whether the field is present and non-nil
func (s Submission) Has(field string) bool {
	v, ok := s[field]
	return ok && v != nil
}

// String returns the field as a trimmed string, empty when absent or nil
func (s Submission) String(field string) string {
	v, ok := s[field]
	if !ok || v == nil {
		return ""
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(str)
}

// Bool returns the field as a bool along with whether it was a recognisable boolean
func (s Submission) Bool(field string) (bool, bool) {
	v, ok := s[field]
	if !ok || v == nil {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Status returns the free-text overall status
func (s Submission) Status() string {
	return s.String(FieldStatus)
}

// EmployeeID returns the submitting employee's identifier
func (s Submission) EmployeeID() string {
	return s.String(FieldEmployeeID)
}

// ConfirmationStatus returns the IT-incident employee confirmation status
func (s Submission) ConfirmationStatus() string {
	return s.String(FieldEmployeeConfirmationStatus)
}

// CreatedAt parses created_at. Missing or unparseable timestamps yield the
// Unix epoch.
func (s Submission) CreatedAt() time.Time {
	return ParseTimestamp(s[FieldCreatedAt])
}

// Fields returns the submission's field names in sorted order
func (s Submission) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the submission
func (s Submission) Clone() Submission {
	out := make(Submission, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// offsetHourLayouts cover Postgres text output, whose zone offset carries
// hours only
var offsetHourLayouts = []string{
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999-07",
}

// ParseTimestamp converts a raw timestamp value into a time.Time, falling back
// to the Unix epoch for nil, empty or unparseable values.
func ParseTimestamp(v interface{}) time.Time {
	if v == nil {
		return time.Unix(0, 0)
	}
	if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
		return time.Unix(0, 0)
	}
	if str, ok := v.(string); ok {
		for _, layout := range offsetHourLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(str)); err == nil {
				return t
			}
		}
	}
	t, err := cast.ToTimeE(v)
	if err != nil || t.IsZero() {
		return time.Unix(0, 0)
	}
	return t
}
