package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/filex"
)

// FileRepository persists each username's entry set as one file of JSON
// lines. Every mutation rewrites the whole file through an atomic rename.
type FileRepository struct {
	dir string
}

// NewFileRepository binds a repository to dir, creating it if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) pathFor(username string) string {
	return filepath.Join(r.dir, username+".dat")
}

// Load reads a username's entries. Malformed lines are skipped rather than
// failing the whole load; the count of skipped lines is returned. A missing
// file yields an empty set.
func (r *FileRepository) Load(username string) ([]Entry, int, error) {
	data, err := os.ReadFile(r.pathFor(username))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: read entries for %q: %v", common.ErrStorage, username, err)
	}

	var (
		entries []Entry
		skipped int
	)
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil || e.Website == "" {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

// Save rewrites the whole entry file for username and returns the bytes it
// wrote, so the caller can snapshot exactly what landed on disk.
func (r *FileRepository) Save(username string, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal entry %q: %w", e.Website, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := filex.WriteFileAtomic(r.pathFor(username), buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("%w: write entries for %q: %v", common.ErrStorage, username, err)
	}
	return buf.Bytes(), nil
}
