package diagnostic

import (
	"fmt"
	"log/slog"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Level maps the severity onto a slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Reason classifies a diagnostic.
type Reason string

const (
	ReasonMissing       Reason = "missing"
	ReasonRecovered     Reason = "type-mismatch-recovered"
	ReasonUnrecoverable Reason = "type-mismatch-unrecoverable"
)

// Severity returns the fixed severity of a reason.
func (r Reason) Severity() Severity {
	switch r {
	case ReasonRecovered:
		return SeverityWarning
	case ReasonUnrecoverable:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Diagnostic is a single mapping anomaly.
type Diagnostic struct {
	// Path is the full dotted source path of the field.
	Path string `json:"path" yaml:"path"`
	// Reason classifies the anomaly.
	Reason Reason `json:"reason" yaml:"reason"`
	// Segment is the first absent path segment (missing only).
	Segment string `json:"segment,omitempty" yaml:"segment,omitempty"`
	// Detail is the human-readable description.
	Detail string `json:"detail" yaml:"detail"`
}

// Severity returns the severity implied by the reason.
func (d Diagnostic) Severity() Severity {
	return d.Reason.Severity()
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Reason, d.Path, d.Detail)
}
