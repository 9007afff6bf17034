package source

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Row is one tabular record: cells addressed by their column label.
// Labels are whole dotted paths, e.g. "reference_data.doi".
type Row struct {
	cells map[string]any
}

// NewRow builds a row from label/cell pairs. Blank cells become null.
func NewRow(cells map[string]string) *Row {
	r := &Row{cells: make(map[string]any, len(cells))}
	for label, cell := range cells {
		r.set(label, cell)
	}
	return r
}

func (r *Row) set(label, cell string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if _, exists := r.cells[label]; exists {
		return
	}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		r.cells[label] = nil
		return
	}
	r.cells[label] = cell
}

// Lookup returns the cell under the exact label path.
func (r *Row) Lookup(path string) (any, string, bool) {
	v, ok := r.cells[path]
	if !ok {
		return nil, path, false
	}
	return v, "", true
}

// Len returns the number of labelled cells.
func (r *Row) Len() int {
	return len(r.cells)
}

// ReadVerticalCSV reads a two-column "label,value" sheet into a Row.
// An optional header row whose first cell is "label" is skipped. Rows with
// an empty label are ignored and the first occurrence of a label wins.
func ReadVerticalCSV(rd io.Reader) (*Row, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	r := &Row{cells: map[string]any{}}
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedError{Err: err}
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "label") {
				continue
			}
		}
		if len(rec) == 0 {
			continue
		}
		cell := ""
		if len(rec) > 1 {
			cell = rec[1]
		}
		r.set(rec[0], cell)
	}

	if len(r.cells) == 0 {
		return nil, &MalformedError{Err: errors.New("no labelled rows")}
	}
	return r, nil
}
