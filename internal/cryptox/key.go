package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/passvault/internal/filex"
)

// ErrInvalidKeyFile is returned when a persisted key file exists but does
// not hold a key of the expected length.
var ErrInvalidKeyFile = errors.New("invalid key file")

// loadOrCreateKey reads the key from path. On the first run the file does
// not exist yet: a random key is generated and persisted with owner-only
// permissions. Losing the file makes all ciphertext unrecoverable, which is
// the intended property of the store.
func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrInvalidKeyFile, path, len(key), KeySize)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := filex.WriteFileAtomic(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("persist key file: %w", err)
	}
	return key, nil
}
