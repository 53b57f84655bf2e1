package tempfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage stages uploads under a dedicated temp directory. Staged files are
// named by a fresh UUID plus the original extension, so the declared filename
// never reaches the filesystem.
type Storage struct {
	baseDir string
}

func New(baseDir string) (*Storage, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "effidash-uploads")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve temp dir: %w", err)
	}
	return &Storage{baseDir: abs}, nil
}

func (s *Storage) BaseDir() string {
	return s.baseDir
}

// Stage writes the upload stream to disk and returns its generated id and
// absolute path. The partially written file is removed on copy failure.
func (s *Storage) Stage(ctx context.Context, filename string, data io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.baseDir, id+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return "", "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("close staged file: %w", err)
	}

	return id, path, nil
}

// Cleanup removes a staged file. It reports whether a file was actually
// removed; a missing path returns false without raising.
func (s *Storage) Cleanup(path string) bool {
	if !s.contains(path) {
		slog.Warn("cleanup_refused_outside_temp_dir", "path", path)
		return false
	}
	err := os.Remove(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		slog.Warn("cleanup_failed", "path", path, "error", err)
	}
	return false
}

// SweepOlderThan removes staged files whose modification time is older than
// maxAge and returns how many were deleted.
func (s *Storage) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("sweep_remove_failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Storage) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
