package mapper

import (
	"errors"
	"fmt"
	"strings"
)

// Descriptor declares how one target field is filled from a source document.
type Descriptor struct {
	// Source is the dotted path read from the document.
	Source string
	// Target is the dotted position of the field in the mapped output.
	Target string
	// Kind is the expected primitive type.
	Kind Kind
	// Default is used when the path is absent, null, or cannot be coerced.
	Default any
	// Normalize, if set, rewrites a resolved non-null value before
	// coercion. It must be pure.
	Normalize func(any) any
}

var errInvalidDescriptors = errors.New("invalid field descriptors")

// validateDescriptors checks a descriptor table once, at construction time.
func validateDescriptors(descs []Descriptor) error {
	if len(descs) == 0 {
		return fmt.Errorf("%w: empty table", errInvalidDescriptors)
	}

	targets := make(map[string]struct{}, len(descs))
	for i, d := range descs {
		if d.Source == "" || d.Target == "" {
			return fmt.Errorf("%w: descriptor %d has an empty path", errInvalidDescriptors, i)
		}
		if hasEmptySegment(d.Source) || hasEmptySegment(d.Target) {
			return fmt.Errorf("%w: descriptor %q has an empty path segment", errInvalidDescriptors, d.Target)
		}
		if !d.Kind.IsValid() {
			return fmt.Errorf("%w: descriptor %q has unknown kind %q", errInvalidDescriptors, d.Target, d.Kind)
		}
		if err := d.Kind.checkDefault(d.Default); err != nil {
			return fmt.Errorf("%w: descriptor %q: %v", errInvalidDescriptors, d.Target, err)
		}
		if _, dup := targets[d.Target]; dup {
			return fmt.Errorf("%w: duplicate target %q", errInvalidDescriptors, d.Target)
		}
		targets[d.Target] = struct{}{}
	}

	// A leaf cannot also be a container of another leaf.
	for t := range targets {
		for _, prefix := range prefixes(t) {
			if _, clash := targets[prefix]; clash {
				return fmt.Errorf("%w: target %q is both a leaf and a container", errInvalidDescriptors, prefix)
			}
		}
	}

	return nil
}

func hasEmptySegment(path string) bool {
	for _, s := range strings.Split(path, ".") {
		if s == "" {
			return true
		}
	}
	return false
}
