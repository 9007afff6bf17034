package source

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_Object(t *testing.T) {
	tree, err := DecodeJSON([]byte(`{"a": {"b": 1, "c": 2.5}, "s": "x"}`))
	require.NoError(t, err)

	v, missing, ok := tree.Lookup("a.b")
	require.True(t, ok)
	assert.Empty(t, missing)
	assert.Equal(t, json.Number("1"), v)

	v, _, ok = tree.Lookup("a.c")
	require.True(t, ok)
	assert.Equal(t, "float", KindOf(v))
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax error", `{"a": `},
		{"top-level list", `[1, 2]`},
		{"top-level scalar", `"MOF001"`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDocument))
		})
	}
}

func TestWalk(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": json.Number("1"), "n": nil},
		"s": "leaf",
	}

	tests := []struct {
		name        string
		path        string
		wantOK      bool
		wantMissing string
		wantValue   any
	}{
		{name: "nested hit", path: "a.b", wantOK: true, wantValue: json.Number("1")},
		{name: "null is found", path: "a.n", wantOK: true, wantValue: nil},
		{name: "absent leaf", path: "a.c", wantMissing: "c"},
		{name: "absent root", path: "x.y", wantMissing: "x"},
		{name: "descend through scalar", path: "s.t", wantMissing: "t"},
		{name: "case sensitive", path: "A.b", wantMissing: "A"},
		{name: "no partial match", path: "a.bb", wantMissing: "bb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, missing, ok := Walk(root, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMissing, missing)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", KindOf(nil))
	assert.Equal(t, "boolean", KindOf(true))
	assert.Equal(t, "integer", KindOf(json.Number("42")))
	assert.Equal(t, "float", KindOf(json.Number("4e2")))
	assert.Equal(t, "string", KindOf("x"))
	assert.Equal(t, "list", KindOf([]any{}))
	assert.Equal(t, "object", KindOf(map[string]any{}))
}

func TestNewTree_Nil(t *testing.T) {
	tree := NewTree(nil)
	_, missing, ok := tree.Lookup("identifier")
	assert.False(t, ok)
	assert.Equal(t, "identifier", missing)
}
