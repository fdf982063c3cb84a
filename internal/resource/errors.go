package resource

import "fmt"

// RealizationError reports a failed descriptor → GPU object conversion.
// It is never retried by the core.
type RealizationError struct {
	Resource string // "texture", "mesh", "material", "model"
	Label    string
	Err      error
}

func (e *RealizationError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("realize %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("realize %s %q: %v", e.Resource, e.Label, e.Err)
}

func (e *RealizationError) Unwrap() error { return e.Err }

func realizationError(resource, label string, err error) error {
	if re, ok := err.(*RealizationError); ok && re.Resource == resource {
		return re
	}
	return &RealizationError{Resource: resource, Label: label, Err: err}
}
