package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// quarantine copies a rejected file into dir next to a note holding the
// reason. Names are prefixed with a hash of the source path so that equal
// base names from different directories do not collide.
func quarantine(dir, path string, data []byte, reason error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}

	prefix := uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()[:8]
	dst := filepath.Join(dir, prefix+"-"+filepath.Base(path))

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write quarantined copy: %w", err)
	}
	note := fmt.Sprintf("source: %s\nerror: %v\n", path, reason)
	if err := os.WriteFile(dst+".error.txt", []byte(note), 0o644); err != nil {
		return "", fmt.Errorf("write quarantine note: %w", err)
	}

	return dst, nil
}
