package approval

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// StageValue is the normalized status of one stage
type StageValue string

const (
	StatusApproved StageValue = "Approved"
	StatusRejected StageValue = "Rejected"
	StatusPending  StageValue = "Pending"
)

// String returns the string representation of the stage value
func (v StageValue) String() string {
	return string(v)
}

// StatusMap maps lower-cased raw status strings to stage values
type StatusMap map[string]StageValue

// Lookup resolves a raw status case-insensitively. Unmapped values are Pending.
func (m StatusMap) Lookup(raw string) StageValue {
	if v, ok := m[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return StatusPending
}

// StageStatus is the normalized view of one stage
type StageStatus struct {
	Label  string     `json:"label"`
	Value  StageValue `json:"value"`
	Reason string     `json:"reason,omitempty"`
	// Detail carries display text for the raw value, e.g. "In Progress"
	Detail string `json:"detail,omitempty"`
	// Skipped marks a stage reported after an earlier rejection
	Skipped bool `json:"skipped,omitempty"`
}

// statusLabels spells known raw statuses the way the portal displays them
var statusLabels = map[string]string{
	"open":        entity.IncidentStatusOpen,
	"in progress": entity.IncidentStatusInProgress,
	"resolved":    entity.IncidentStatusResolved,
	"closed":      entity.IncidentStatusClosed,
	"completed":   "Completed",
	"approved":    entity.StageValueApproved,
	"rejected":    entity.StageValueRejected,
	"pending":     entity.StageValuePending,
}

// statusLabel returns the display label of a known status, or the trimmed
// raw text
func statusLabel(raw string) string {
	text := strings.TrimSpace(raw)
	if label, ok := statusLabels[strings.ToLower(text)]; ok {
		return label
	}
	return text
}

// NormalizeValue converts a raw stage value under the given encoding. reason is
// the already looked-up rejection reason; it is attached only to Rejected
// results.
func NormalizeValue(raw interface{}, encoding Encoding, statusMap StatusMap, reason string) StageStatus {
	reason = strings.TrimSpace(reason)

	switch encoding {
	case EncodingBoolean:
		if b, err := cast.ToBoolE(raw); err == nil && b && raw != nil {
			return StageStatus{Value: StatusApproved}
		}
		// false is the unset default of clearance fields; only a recorded
		// reason turns it into a rejection
		if reason != "" {
			return StageStatus{Value: StatusRejected, Reason: reason}
		}
		return StageStatus{Value: StatusPending}

	case EncodingStatusMap:
		text := rawString(raw)
		status := StageStatus{Value: statusMap.Lookup(text), Detail: statusLabel(text)}
		if status.Value == StatusRejected {
			status.Reason = reason
		}
		return status

	default:
		text := rawString(raw)
		switch {
		case strings.EqualFold(text, entity.StageValueApproved):
			return StageStatus{Value: StatusApproved}
		case strings.EqualFold(text, entity.StageValueRejected):
			return StageStatus{Value: StatusRejected, Reason: reason}
		default:
			return StageStatus{Value: StatusPending}
		}
	}
}

// Normalize resolves one declared stage against a submission
func Normalize(sub entity.Submission, spec StageSpec) StageStatus {
	status := NormalizeValue(sub[spec.FieldName], spec.Encoding, spec.StatusMap, RejectionReason(sub, spec.ReasonField))
	status.Label = spec.Label
	return status
}

// RejectionReason returns the value of reasonField, or when reasonField is
// empty the first non-blank *_rejected_reason field in sorted field order.
func RejectionReason(sub entity.Submission, reasonField string) string {
	if reasonField != "" {
		return sub.String(reasonField)
	}
	return ScanRejectionReason(sub)
}

// ScanRejectionReason is the fallback lookup for form types without declared
// reason fields
func ScanRejectionReason(sub entity.Submission) string {
	for _, field := range sub.Fields() {
		if !strings.HasSuffix(field, entity.RejectedReasonSuffix) {
			continue
		}
		if reason := sub.String(field); reason != "" {
			return reason
		}
	}
	return ""
}

func rawString(raw interface{}) string {
	if raw == nil {
		return ""
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
