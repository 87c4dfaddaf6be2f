// Package approval derives uniform approval pipelines from heterogeneous form
// submissions. Every function here is pure and safe for concurrent use.
package approval

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encoding describes how a stage's raw field value is stored
type Encoding string

const (
	EncodingStringEnum Encoding = "string_enum"
	EncodingBoolean    Encoding = "boolean"
	EncodingStatusMap  Encoding = "status_map"
)

// IsValid returns true if the encoding is one of the known encodings
func (e Encoding) IsValid() bool {
	switch e {
	case EncodingStringEnum, EncodingBoolean, EncodingStatusMap:
		return true
	default:
		return false
	}
}

// StageSpec declares one approval stage of a form type
type StageSpec struct {
	FieldName string   `yaml:"field" json:"field"`
	Label     string   `yaml:"label" json:"label"`
	Encoding  Encoding `yaml:"encoding" json:"encoding"`
	// ReasonField names the paired rejection reason field. Empty means the
	// reason is found by scanning for any *_rejected_reason field.
	ReasonField string `yaml:"reason_field,omitempty" json:"reason_field,omitempty"`
	// StatusMap is consulted for EncodingStatusMap stages
	StatusMap StatusMap `yaml:"status_map,omitempty" json:"status_map,omitempty"`
}

// Registry maps form types to their ordered stage lists. A Registry is
// immutable after construction.
type Registry struct {
	schemas map[string][]StageSpec
}

// NewRegistry builds a registry from the given table. Stage lists are copied.
func NewRegistry(table map[string][]StageSpec) (*Registry, error) {
	r := &Registry{schemas: make(map[string][]StageSpec, len(table))}
	for formType, stages := range table {
		if err := validateStages(formType, stages); err != nil {
			return nil, err
		}
		r.schemas[normalizeFormType(formType)] = copyStages(stages)
	}
	return r, nil
}

// DefaultRegistry returns the built-in schema table
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultSchemas())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in approval schema: %v", err))
	}
	return r
}

// StagesFor returns the ordered stage list for a form type. Unknown form types
// yield an empty list.
func (r *Registry) StagesFor(formType string) []StageSpec {
	if r == nil {
		return nil
	}
	return copyStages(r.schemas[normalizeFormType(formType)])
}

// Knows reports whether the form type has a declared schema
func (r *Registry) Knows(formType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.schemas[normalizeFormType(formType)]
	return ok
}

// FormTypes returns all registered form types in sorted order
func (r *Registry) FormTypes() []string {
	if r == nil {
		return nil
	}
	types := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Merge returns a new registry where the given table's entries replace or
// extend the receiver's.
func (r *Registry) Merge(table map[string][]StageSpec) (*Registry, error) {
	merged := make(map[string][]StageSpec, len(r.schemas)+len(table))
	for k, v := range r.schemas {
		merged[k] = v
	}
	for k, v := range table {
		merged[normalizeFormType(k)] = v
	}
	return NewRegistry(merged)
}

// registryFile is the on-disk YAML shape of a schema table
type registryFile struct {
	FormTypes map[string][]StageSpec `yaml:"form_types"`
}

// LoadRegistryFile reads a YAML schema table and merges it over the built-in
// table.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses a YAML schema table and merges it over the built-in
// table.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}
	return DefaultRegistry().Merge(file.FormTypes)
}

func validateStages(formType string, stages []StageSpec) error {
	if strings.TrimSpace(formType) == "" {
		return fmt.Errorf("form type name is required")
	}
	for i, st := range stages {
		if st.FieldName == "" {
			return fmt.Errorf("%s: stage %d has no field", formType, i)
		}
		if st.Label == "" {
			return fmt.Errorf("%s: stage %d (%s) has no label", formType, i, st.FieldName)
		}
		if !st.Encoding.IsValid() {
			return fmt.Errorf("%s: stage %s has invalid encoding %q", formType, st.FieldName, st.Encoding)
		}
		if st.Encoding == EncodingStatusMap && len(st.StatusMap) == 0 {
			return fmt.Errorf("%s: stage %s uses status_map encoding without a map", formType, st.FieldName)
		}
	}
	return nil
}

func normalizeFormType(formType string) string {
	return strings.ToLower(strings.TrimSpace(formType))
}

func copyStages(stages []StageSpec) []StageSpec {
	if len(stages) == 0 {
		return []StageSpec{}
	}
	out := make([]StageSpec, len(stages))
	copy(out, stages)
	return out
}
