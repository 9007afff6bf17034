package mapper

import (
	"github.com/fliaght/novelmof/internal/diagnostic"
	"github.com/fliaght/novelmof/internal/source"
)

// Resolve returns the value stored at path in doc, or def when any segment
// of the path cannot be followed. A failed resolution records exactly one
// missing diagnostic naming the failing segment; a successful one records
// nothing. A resolved null is returned as nil.
func Resolve(doc source.Document, path string, def any, log *diagnostic.Log) any {
	v, ok := lookup(doc, path, log)
	if !ok {
		return def
	}
	return v
}

func lookup(doc source.Document, path string, log *diagnostic.Log) (any, bool) {
	if doc == nil {
		log.Missing(path, firstSegment(path))
		return nil, false
	}
	v, missing, ok := doc.Lookup(path)
	if !ok {
		log.Missing(path, missing)
		return nil, false
	}
	return v, true
}

func firstSegment(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
