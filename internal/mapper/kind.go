package mapper

import "fmt"

// Kind is the primitive type a target field expects.
type Kind string

const (
	KindString       Kind = "string"
	KindInteger      Kind = "integer"
	KindFloat        Kind = "float"
	KindBoolean      Kind = "boolean"
	KindListOfString Kind = "list-of-string"
)

// IsValid checks if the kind is one of the supported primitives.
func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindBoolean, KindListOfString:
		return true
	}
	return false
}

// accepts reports whether v is a Go value of the type a field of kind k
// holds after mapping: string, int64, float64, bool or []string.
func (k Kind) accepts(v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInteger:
		_, ok := v.(int64)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindListOfString:
		_, ok := v.([]string)
		return ok
	}
	return false
}

func (k Kind) String() string { return string(k) }

// checkDefault validates a descriptor default against its kind.
// A nil default is always allowed.
func (k Kind) checkDefault(def any) error {
	if def == nil || k.accepts(def) {
		return nil
	}
	return fmt.Errorf("default %v (%T) is not a %s", def, def, k)
}
