// Package source adapts raw input formats to the single capability the
// mapper needs: looking up a value by its dotted label.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMalformedDocument is returned when an input cannot be parsed into a
// document at all. It is the only mapping failure that reaches the caller.
var ErrMalformedDocument = errors.New("malformed document")

// Document is a source record queried by dotted path.
type Document interface {
	// Lookup returns the value stored under path. When the path cannot be
	// followed it returns ok == false and the first segment that could not
	// be resolved.
	Lookup(path string) (value any, missing string, ok bool)
}

// MalformedError describes an input that failed to parse.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrMalformedDocument, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", ErrMalformedDocument, e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedDocument) hold for every MalformedError.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// Format identifies an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the input format from a file name.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".csv":
		return FormatCSV, true
	default:
		return "", false
	}
}

// Load decodes data according to the extension of name.
func Load(name string, data []byte) (Document, error) {
	format, ok := FormatFromName(name)
	if !ok {
		return nil, &MalformedError{Path: name, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(name))}
	}

	var (
		doc Document
		err error
	)
	switch format {
	case FormatCSV:
		doc, err = ReadVerticalCSV(bytes.NewReader(data))
	default:
		doc, err = DecodeJSON(data)
	}
	if err != nil {
		var me *MalformedError
		if errors.As(err, &me) {
			me.Path = name
			return nil, me
		}
		return nil, &MalformedError{Path: name, Err: err}
	}
	return doc, nil
}
