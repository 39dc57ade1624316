// Package results persists completed interview records. Persistence is fire
// and forget: the candidate has already received their completion message, so
// failures here are logged by the caller, never escalated.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/interview"
)

// FileStore writes one JSON file per completed interview.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "interview_results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonResultPersist)
	}
	return &FileStore{dir: dir}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func (s *FileStore) Persist(ctx context.Context, rec interview.FinalRecord) error {
	name := unsafeChars.ReplaceAllString(strings.ReplaceAll(rec.Name, " ", "_"), "")
	if name == "" {
		name = "candidate"
	}
	filename := fmt.Sprintf("interview_%s_%s.json", name, time.Now().Format("20060102_150405"))
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonResultPersist)
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), b, 0o644); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonResultPersist)
	}
	return nil
}
