package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/filex"
)

// FileRepository persists identities as one JSON object per line. Every
// mutation rewrites the whole file through an atomic rename.
type FileRepository struct {
	path string
}

// NewFileRepository binds a repository to the given file path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads all identity records. Malformed lines are skipped rather than
// failing the whole load; the count of skipped lines is returned so the
// caller can log it. A missing file yields an empty store.
func (r *FileRepository) Load() ([]Identity, int, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: read %s: %v", common.ErrStorage, r.path, err)
	}

	var (
		identities []Identity
		skipped    int
	)
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var id Identity
		if err := json.Unmarshal(line, &id); err != nil || id.Username == "" {
			skipped++
			continue
		}
		identities = append(identities, id)
	}
	return identities, skipped, nil
}

// Save rewrites the whole identity file.
func (r *FileRepository) Save(identities []Identity) error {
	var buf bytes.Buffer
	for _, id := range identities {
		line, err := json.Marshal(id)
		if err != nil {
			return fmt.Errorf("marshal identity %q: %w", id.Username, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := filex.WriteFileAtomic(r.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrStorage, r.path, err)
	}
	return nil
}
