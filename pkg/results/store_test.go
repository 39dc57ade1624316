package results

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hireloop/hireloop/pkg/interview"
)

func TestPersistWritesSanitizedJSONFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rec := interview.FinalRecord{
		Name:           "Jordan Reyes/../etc",
		JobDescription: "Backend engineer",
		Conversations: []interview.TurnRecord{
			{Question: "Q1", Answer: "A1", Score: 8, Feedback: "good"},
		},
		OverallScore: 8,
	}
	if err := store.Persist(context.Background(), rec); err != nil {
		t.Fatalf("persist: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one result file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "interview_Jordan_Reyes") || !strings.HasSuffix(name, ".json") {
		t.Fatalf("unexpected filename: %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		t.Fatalf("unsafe characters in filename: %q", name)
	}

	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var got interview.FinalRecord
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.OverallScore != 8 || len(got.Conversations) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestNewFileStoreDefaultsDir(t *testing.T) {
	cwd, _ := os.Getwd()
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	store, err := NewFileStore("  ")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.dir != "interview_results" {
		t.Fatalf("expected default dir, got %q", store.dir)
	}
	if _, err := os.Stat(filepath.Join(tmp, "interview_results")); err != nil {
		t.Fatalf("default dir not created: %v", err)
	}
}
