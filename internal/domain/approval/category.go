package approval

import (
	"strings"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Category is a coarse list-filter bucket derived from the overall status.
// It is independent of pipeline resolution.
type Category string

const (
	CategoryOpen       Category = "Open"
	CategoryPending    Category = "Pending"
	CategoryInProgress Category = "In Progress"
	CategoryResolve    Category = "Resolve"
	CategoryUpdate     Category = "Update"
	CategoryClose      Category = "Close"
)

// Categories lists every bucket in display order
var Categories = []Category{
	CategoryOpen,
	CategoryPending,
	CategoryInProgress,
	CategoryResolve,
	CategoryUpdate,
	CategoryClose,
}

var categoryByStatus = map[string]Category{
	"approved":    CategoryResolve,
	"completed":   CategoryResolve,
	"closed":      CategoryResolve,
	"resolved":    CategoryResolve,
	"updated":     CategoryUpdate,
	"in progress": CategoryInProgress,
	"assigned":    CategoryInProgress,
	"processing":  CategoryInProgress,
	"rejected":    CategoryClose,
	"cancelled":   CategoryClose,
	"open":        CategoryOpen,
	"new":         CategoryOpen,
	"pending":     CategoryPending,
	"submitted":   CategoryPending,
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory matches a category name case-insensitively. Both "In Progress"
// and "InProgress" are accepted.
func ParseCategory(name string) (Category, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	for _, c := range Categories {
		if strings.ToLower(strings.ReplaceAll(string(c), " ", "")) == key {
			return c, true
		}
	}
	return "", false
}

// ClassifyStatus buckets a raw overall status. Anything unrecognised,
// including an empty status, is Pending.
func ClassifyStatus(status string) Category {
	if c, ok := categoryByStatus[strings.ToLower(strings.TrimSpace(status))]; ok {
		return c
	}
	return CategoryPending
}

// Classify buckets a submission by its overall status
func Classify(sub entity.Submission) Category {
	return ClassifyStatus(sub.Status())
}
