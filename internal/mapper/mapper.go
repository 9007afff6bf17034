// Package mapper maps loosely typed source documents onto a fixed, typed
// record shape described by a table of field descriptors.
package mapper

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fliaght/novelmof/internal/diagnostic"
	"github.com/fliaght/novelmof/internal/source"
)

// Mapper applies a validated descriptor table to documents.
// It is immutable and safe for concurrent use.
type Mapper struct {
	cfg         Config
	descriptors []Descriptor
	containers  []string
}

// New validates cfg and descs and returns a Mapper.
func New(cfg Config, descs []Descriptor) (*Mapper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := validateDescriptors(descs); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var containers []string
	for _, d := range descs {
		for _, c := range prefixes(d.Target) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			containers = append(containers, c)
		}
	}

	owned := make([]Descriptor, len(descs))
	copy(owned, descs)

	return &Mapper{cfg: cfg, descriptors: owned, containers: containers}, nil
}

// Descriptors returns a copy of the descriptor table.
func (m *Mapper) Descriptors() []Descriptor {
	out := make([]Descriptor, len(m.descriptors))
	copy(out, m.descriptors)
	return out
}

// MapField resolves and coerces a single field. It never fails: every
// problem is recorded in log and the descriptor default is returned.
func (m *Mapper) MapField(doc source.Document, d Descriptor, log *diagnostic.Log) any {
	value, ok := lookup(doc, d.Source, log)
	if !ok || value == nil {
		return d.Default
	}
	if d.Normalize != nil {
		value = d.Normalize(value)
	}

	out, mismatch := Coerce(value, d.Kind, d.Default)
	if mismatch != nil {
		log.Add(mismatch.Diagnostic(d.Source))
	}
	return out
}

// Map maps every declared field of doc into a nested map keyed by target
// segments. All declared containers and leaves are present in the result.
// Diagnostics are ordered by descriptor, regardless of FieldWorkers.
func (m *Mapper) Map(doc source.Document) (map[string]any, *diagnostic.Log) {
	values := make([]any, len(m.descriptors))
	logs := make([]*diagnostic.Log, len(m.descriptors))
	for i := range logs {
		logs[i] = &diagnostic.Log{}
	}

	if m.cfg.FieldWorkers > 1 {
		var g errgroup.Group
		g.SetLimit(m.cfg.FieldWorkers)
		for i, d := range m.descriptors {
			g.Go(func() error {
				values[i] = m.MapField(doc, d, logs[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, d := range m.descriptors {
			values[i] = m.MapField(doc, d, logs[i])
		}
	}

	out := make(map[string]any)
	for _, c := range m.containers {
		ensure(out, c)
	}
	log := &diagnostic.Log{}
	for i, d := range m.descriptors {
		parent, key := split(d.Target)
		ensure(out, parent)[key] = values[i]
		log.Merge(logs[i])
	}

	return out, log
}

// MapBytes decodes name/data with source.Load and maps the result.
// Only a malformed document is returned as an error.
func (m *Mapper) MapBytes(name string, data []byte) (map[string]any, *diagnostic.Log, error) {
	doc, err := source.Load(name, data)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", name, err)
	}
	fields, log := m.Map(doc)
	return fields, log, nil
}

func prefixes(target string) []string {
	var out []string
	for i := 0; i < len(target); i++ {
		if target[i] == '.' {
			out = append(out, target[:i])
		}
	}
	return out
}

func split(target string) (string, string) {
	i := strings.LastIndexByte(target, '.')
	if i < 0 {
		return "", target
	}
	return target[:i], target[i+1:]
}

// ensure returns the nested map at path, creating it as needed.
func ensure(root map[string]any, path string) map[string]any {
	if path == "" {
		return root
	}
	current := root
	for _, seg := range strings.Split(path, ".") {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	return current
}
