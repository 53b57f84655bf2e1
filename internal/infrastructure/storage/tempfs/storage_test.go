package tempfs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStageWritesFileWithGeneratedName(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	id, path, err := s.Stage(context.Background(), "report.PDF", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if filepath.Base(path) != id+".pdf" {
		t.Errorf("staged name = %s, want %s.pdf", filepath.Base(path), id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("staged content = %q", data)
	}
}

func TestStageGeneratesDistinctIDs(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, _, err := s.Stage(context.Background(), "a.txt", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Stage: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, path, err := s.Stage(context.Background(), "a.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	if !s.Cleanup(path) {
		t.Fatal("first cleanup should succeed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be gone after cleanup")
	}
	if s.Cleanup(path) {
		t.Fatal("second cleanup on a removed path should report false")
	}
}

func TestCleanupRefusesPathsOutsideBaseDir(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o600); err != nil {
		t.Fatalf("write victim: %v", err)
	}

	if s.Cleanup(outside) {
		t.Fatal("cleanup outside the temp dir must be refused")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("victim file must survive: %v", err)
	}
	if s.Cleanup(filepath.Join(s.BaseDir(), "..", "victim.txt")) {
		t.Fatal("traversal path must be refused")
	}
}

func TestSweepOlderThanRemovesOnlyStaleFiles(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, stale, err := s.Stage(context.Background(), "old.txt", strings.NewReader("old"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	_, fresh, err := s.Stage(context.Background(), "new.txt", strings.NewReader("new"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := s.SweepOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("SweepOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file should survive: %v", err)
	}
}

func TestStageRoundTripsBinaryContent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	original := make([]byte, 4096)
	for i := range original {
		original[i] = byte(i % 251)
	}

	_, path, err := s.Stage(context.Background(), "blob.bin.txt", bytes.NewReader(original))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	staged, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if !bytes.Equal(staged, original) {
		t.Error("staged bytes differ from the upload")
	}
}
