package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/filex"
)

// DefaultBackupsKept is how many snapshots are retained per username.
const DefaultBackupsKept = 5

// snapshotTimeLayout is fixed-width UTC so names sort by creation time.
const snapshotTimeLayout = "20060102T150405.000000000"

// BackupManager writes one encrypted snapshot of a username's entry file
// after every mutation and prunes old ones, keeping the newest N.
type BackupManager struct {
	dir    string
	cipher *cryptox.Cipher
	keep   int
	now    func() time.Time
}

// NewBackupManager constructs a manager over dir, creating it if needed.
// A non-positive keep falls back to DefaultBackupsKept.
func NewBackupManager(dir string, cipher *cryptox.Cipher, keep int) (*BackupManager, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if keep <= 0 {
		keep = DefaultBackupsKept
	}
	return &BackupManager{dir: dir, cipher: cipher, keep: keep, now: time.Now}, nil
}

// Snapshot encrypts the given entry-file contents and writes them as a new
// timestamped backup for username, then prunes retention. It returns the
// snapshot file name.
func (b *BackupManager) Snapshot(username string, data []byte) (string, error) {
	blob, err := b.cipher.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot for %q: %w", username, err)
	}

	name := fmt.Sprintf("%s-%s.bak", username, b.now().UTC().Format(snapshotTimeLayout))
	if err := filex.WriteFileAtomic(filepath.Join(b.dir, name), blob, 0o600); err != nil {
		return "", fmt.Errorf("%w: write snapshot %s: %v", common.ErrStorage, name, err)
	}

	if err := b.prune(username); err != nil {
		return "", err
	}
	return name, nil
}

// List returns the username's snapshot file names, oldest first.
func (b *BackupManager) List(username string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read backup dir: %v", common.ErrStorage, err)
	}

	var names []string
	for _, e := range entries {
		if isSnapshotOf(e.Name(), username) {
			names = append(names, e.Name())
		}
	}
	// Timestamp-embedded names sort correctly.
	sort.Strings(names)
	return names, nil
}

// Read decrypts one snapshot back into entry-file contents.
func (b *BackupManager) Read(name string) ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(b.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot %s: %v", common.ErrStorage, name, err)
	}
	return b.cipher.Decrypt(blob)
}

// isSnapshotOf reports whether name is one of username's snapshots. The
// trailing "-<timestamp>.bak" is fixed width, so the owner portion must
// equal username exactly; a username that is a prefix of another cannot
// match the other's files.
func isSnapshotOf(name, username string) bool {
	if len(name) != len(username)+1+len(snapshotTimeLayout)+len(".bak") {
		return false
	}
	if !strings.HasPrefix(name, username+"-") || !strings.HasSuffix(name, ".bak") {
		return false
	}
	ts := name[len(username)+1 : len(name)-len(".bak")]
	_, err := time.Parse(snapshotTimeLayout, ts)
	return err == nil
}

// prune evicts the oldest snapshots beyond the retention count.
func (b *BackupManager) prune(username string) error {
	names, err := b.List(username)
	if err != nil {
		return err
	}
	for len(names) > b.keep {
		if err := os.Remove(filepath.Join(b.dir, names[0])); err != nil {
			return fmt.Errorf("%w: remove snapshot %s: %v", common.ErrStorage, names[0], err)
		}
		names = names[1:]
	}
	return nil
}
