// Package diagnostic records the non-fatal anomalies found while mapping a
// source document onto the archive schema.
//
// Every entry names the target field's source path and one of three reasons:
//   - missing: a path segment was absent, the field took its default
//   - type-mismatch-recovered: the value had the wrong type and was coerced
//   - type-mismatch-unrecoverable: no coercion applied, the field took its default
//
// A Log is owned by one mapping call and is safe for concurrent appends.
package diagnostic
