// Package snapshot persists enriched run snapshots and locates previous
// runs for trend analysis.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// ErrNoSnapshots is returned when the repository holds no usable snapshot.
var ErrNoSnapshots = errors.New("no snapshots available")

const (
	filePrefix     = "snapshot_"
	fileExt        = ".json"
	fileTimeLayout = "20060102_150405"
)

// Entry is one stored snapshot file.
type Entry struct {
	Path      string
	Timestamp time.Time
}

// Repository reads and writes snapshot files under a single directory.
// Snapshots are immutable: Save never overwrites an existing file.
type Repository struct {
	dir    string
	logger *zap.Logger
}

// NewRepository returns a Repository rooted at dir.
func NewRepository(dir string, logger *zap.Logger) *Repository {
	return &Repository{dir: dir, logger: logger}
}

// FileName is the file name Save gives a snapshot generated at t.
func FileName(t time.Time) string {
	return filePrefix + t.UTC().Format(fileTimeLayout) + fileExt
}

// Save writes the snapshot to a timestamped file and returns its path.
func (r *Repository) Save(s *models.FoundationSnapshot) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	name := FileName(s.GeneratedAt)
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("snapshot %s already exists", name)
	}
	if err := WriteJSONAtomic(path, s); err != nil {
		return "", err
	}
	r.logger.Info("snapshot saved",
		zap.String("path", path),
		zap.String("run_id", s.RunID),
		zap.Int("records", len(s.Records)))
	return path, nil
}

// Load reads one snapshot file.
func (r *Repository) Load(path string) (*models.FoundationSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var s models.FoundationSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return &s, nil
}

// Latest loads the most recent snapshot.
func (r *Repository) Latest() (*models.FoundationSnapshot, string, error) {
	entries, err := r.List()
	if err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrNoSnapshots
	}
	last := entries[len(entries)-1]
	s, err := r.Load(last.Path)
	if err != nil {
		return nil, "", err
	}
	return s, last.Path, nil
}

// LatestBefore loads the most recent snapshot taken strictly before t.
func (r *Repository) LatestBefore(t time.Time) (*models.FoundationSnapshot, string, error) {
	entries, err := r.List()
	if err != nil {
		return nil, "", err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Timestamp.Before(t) {
			s, err := r.Load(entries[i].Path)
			if err != nil {
				return nil, "", err
			}
			return s, entries[i].Path, nil
		}
	}
	return nil, "", ErrNoSnapshots
}

// List returns all snapshot entries in chronological order. Files that do
// not follow the snapshot naming scheme are ignored.
func (r *Repository) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshot directory: %w", err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
		ts, err := time.ParseInLocation(fileTimeLayout, stamp, time.UTC)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Path: filepath.Join(r.dir, name), Timestamp: ts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries, nil
}

// WriteJSONAtomic writes v as indented JSON via a temp file and rename, so
// readers never observe a partially written report.
func WriteJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
