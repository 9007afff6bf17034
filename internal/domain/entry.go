package domain

import (
	"time"

	"github.com/google/uuid"
)

// entryNamespace seeds the name-based entry IDs.
var entryNamespace = uuid.MustParse("6f1c1a52-4e0b-4b55-9d38-5a8e0f6c2b7d")

// MOFEntry is a stored MOFArchive together with its provenance.
type MOFEntry struct {
	ID         uuid.UUID
	SourcePath string
	Record     *MOFArchive
	IngestedAt time.Time
}

// NewMOFEntry wraps a record for storage. The ID is derived from the record
// identifier, or from the source path when the identifier is missing, so that
// re-ingesting the same document replaces the stored entry.
func NewMOFEntry(record *MOFArchive, sourcePath string, now time.Time) MOFEntry {
	return MOFEntry{
		ID:         EntryID(record, sourcePath),
		SourcePath: sourcePath,
		Record:     record,
		IngestedAt: now,
	}
}

// EntryID returns the stable ID of a record.
func EntryID(record *MOFArchive, sourcePath string) uuid.UUID {
	if record != nil && record.Identifier != nil && *record.Identifier != "" {
		return uuid.NewSHA1(entryNamespace, []byte("identifier:"+*record.Identifier))
	}
	return uuid.NewSHA1(entryNamespace, []byte("path:"+sourcePath))
}

// TermCount is one bucket of a terms aggregation.
type TermCount struct {
	Term  string `db:"term"`
	Count int64  `db:"count"`
}

// HistogramBin is one bucket of a numeric histogram. Min is inclusive,
// Max is exclusive except for the last bin.
type HistogramBin struct {
	Min   float64
	Max   float64
	Count int64
}
