package vault

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/policy"
)

// Vault owns the per-username secret-entry sets. It is safe for concurrent
// use; at most one mutation is in flight at a time.
type Vault struct {
	mu      sync.Mutex
	repo    *FileRepository
	backups *BackupManager
	cipher  *cryptox.Cipher
	logger  logging.Logger
	entries map[string][]Entry
	now     func() time.Time
}

// NewVault wires the vault over its repository, backup manager and cipher.
// Entry sets are loaded lazily per username on first access.
func NewVault(repo *FileRepository, backups *BackupManager, cipher *cryptox.Cipher, logger logging.Logger) *Vault {
	return &Vault{
		repo:    repo,
		backups: backups,
		cipher:  cipher,
		logger:  logger,
		entries: make(map[string][]Entry),
		now:     time.Now,
	}
}

// Upsert encrypts password and stores it under (username, website). An
// existing entry keeps its id and created_at and gets a new ciphertext and
// updated_at; otherwise a fresh entry is appended. The entry set is
// persisted and a backup snapshot is taken.
func (v *Vault) Upsert(ctx context.Context, username, website, password string) error {
	if err := policy.ValidateUsername(username); err != nil {
		return err
	}
	if website == "" {
		return fmt.Errorf("%w: website must not be empty", common.ErrorValidation)
	}
	if err := policy.ValidateFields(map[string]string{"website": website, "password": password}); err != nil {
		return err
	}

	encrypted, err := v.cipher.Encrypt([]byte(password))
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	cached, err := v.loadLocked(ctx, username)
	if err != nil {
		return err
	}
	// Work on a copy so a failed persist leaves the cache untouched.
	entries := append([]Entry(nil), cached...)

	now := v.now().UTC()
	updated := false
	for i := range entries {
		if entries[i].Website == website {
			entries[i].EncryptedPassword = encrypted
			entries[i].UpdatedAt = now
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, Entry{
			ID:                uuid.NewString(),
			Website:           website,
			EncryptedPassword: encrypted,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	return v.persistLocked(ctx, username, entries)
}

// Delete removes the (username, website) entry if present and reports
// whether a removal occurred. A removal re-persists and re-snapshots the set.
func (v *Vault) Delete(ctx context.Context, username, website string) (bool, error) {
	if err := policy.ValidateUsername(username); err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.loadLocked(ctx, username)
	if err != nil {
		return false, err
	}

	kept := make([]Entry, 0, len(entries))
	removed := false
	for _, e := range entries {
		if e.Website == website {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return false, nil
	}

	if err := v.persistLocked(ctx, username, kept); err != nil {
		return false, err
	}
	return true, nil
}

// List returns a copy of the username's entries with ciphertext intact.
// Decryption is per entry via DecryptEntry, never eager.
func (v *Vault) List(ctx context.Context, username string) ([]Entry, error) {
	if err := policy.ValidateUsername(username); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.loadLocked(ctx, username)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// DecryptEntry recovers the plaintext password of one entry.
func (v *Vault) DecryptEntry(e Entry) (string, error) {
	plaintext, err := v.cipher.Decrypt(e.EncryptedPassword)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Backups lists the username's snapshot file names, oldest first.
func (v *Vault) Backups(username string) ([]string, error) {
	return v.backups.List(username)
}

// loadLocked returns the username's entry set, reading it from the
// repository on first access. Caller holds the lock.
func (v *Vault) loadLocked(ctx context.Context, username string) ([]Entry, error) {
	if entries, ok := v.entries[username]; ok {
		return entries, nil
	}
	entries, skipped, err := v.repo.Load(username)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		v.logger.Warn(ctx, "skipped malformed secret records", "username", username, "count", skipped)
	}
	v.entries[username] = entries
	return entries, nil
}

// persistLocked writes the entry set, snapshots it and updates the cache.
// Caller holds the lock.
func (v *Vault) persistLocked(ctx context.Context, username string, entries []Entry) error {
	data, err := v.repo.Save(username, entries)
	if err != nil {
		return err
	}
	v.entries[username] = entries

	name, err := v.backups.Snapshot(username, data)
	if err != nil {
		v.logger.Error(ctx, "backup snapshot failed", "username", username, "error", err.Error())
		return err
	}
	v.logger.Debug(ctx, "backup snapshot written", "username", username, "snapshot", name)
	return nil
}
