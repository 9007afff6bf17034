package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Tree is a decoded JSON object. Numbers are kept as json.Number so that
// integer and float literals stay distinguishable.
type Tree struct {
	root map[string]any
}

// NewTree wraps an already decoded mapping.
func NewTree(root map[string]any) *Tree {
	if root == nil {
		root = map[string]any{}
	}
	return &Tree{root: root}
}

// DecodeJSON parses a single JSON object.
func DecodeJSON(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedError{Err: err}
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, &MalformedError{Err: fmt.Errorf("unexpected data after top-level value")}
	}

	root, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedError{Err: fmt.Errorf("top-level value is %s, want object", KindOf(v))}
	}
	return &Tree{root: root}, nil
}

// Root returns the underlying mapping.
func (t *Tree) Root() map[string]any {
	return t.root
}

// Lookup walks path through nested objects.
func (t *Tree) Lookup(path string) (any, string, bool) {
	return Walk(t.root, path)
}

// Walk descends through nested map[string]any values one dot-separated
// segment at a time. Segments match exactly. It stops at the first segment
// whose parent is not an object or does not hold the key.
func Walk(root any, path string) (any, string, bool) {
	current := root
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, segment, false
		}
		next, exists := m[segment]
		if !exists {
			return nil, segment, false
		}
		current = next
	}
	return current, "", true
}

// KindOf names the JSON kind of a decoded value.
func KindOf(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		if IsIntegerLiteral(x) {
			return "integer"
		}
		return "float"
	case float64, float32:
		return "float"
	case int, int64, int32:
		return "integer"
	case string:
		return "string"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// IsIntegerLiteral reports whether a JSON number was written without a
// fraction or exponent.
func IsIntegerLiteral(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}
