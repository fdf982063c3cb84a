package world

import "fmt"

// DuplicationPolicy decides what AddEntity does when the tag of the new
// entity is already taken.
type DuplicationPolicy uint8

const (
	// AllowDuplication inserts silently.
	AllowDuplication DuplicationPolicy = iota
	// WarnOnDuplication inserts and logs a warning.
	WarnOnDuplication
	// IgnoreOnDuplication drops the new entity without registering it.
	IgnoreOnDuplication
	// OverwriteOnDuplication discards the existing entity first, so at most
	// one entity holds a tag.
	OverwriteOnDuplication
	// PanicOnDuplication refuses the entity with ErrDuplicateTagFatal.
	PanicOnDuplication
)

var policyNames = [...]string{
	AllowDuplication:       "allow",
	WarnOnDuplication:      "warn",
	IgnoreOnDuplication:    "ignore",
	OverwriteOnDuplication: "overwrite",
	PanicOnDuplication:     "panic",
}

func (p DuplicationPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// ParsePolicy accepts the String spellings.
func ParsePolicy(s string) (DuplicationPolicy, error) {
	for i, name := range policyNames {
		if name == s {
			return DuplicationPolicy(i), nil
		}
	}
	return AllowDuplication, fmt.Errorf("duplication policy %q: unknown", s)
}
