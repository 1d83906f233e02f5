package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/policy"
)

type vaultFixture struct {
	vault *Vault
	dir   string
}

func newFixture(t *testing.T, keep int) *vaultFixture {
	t.Helper()
	dir := t.TempDir()

	cipher, err := cryptox.NewCipher(filepath.Join(dir, "vault.key"))
	require.NoError(t, err)

	repo, err := NewFileRepository(filepath.Join(dir, "vault"))
	require.NoError(t, err)

	backups, err := NewBackupManager(filepath.Join(dir, "backups"), cipher, keep)
	require.NoError(t, err)

	v := NewVault(repo, backups, cipher, logging.NewDiscard())

	// Deterministic, strictly increasing clock shared by vault and backups.
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	v.now = tick
	backups.now = tick

	return &vaultFixture{vault: v, dir: dir}
}

func TestVault_UpsertAndList(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw1"))
	require.NoError(t, f.vault.Upsert(ctx, "alice", "other.org", "pw2"))

	entries, err := f.vault.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	got, err := f.vault.DecryptEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, "pw1", got)
}

func TestVault_UpsertIsIdempotentByWebsite(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw1"))

	entries, err := f.vault.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	first := entries[0]

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw2"))

	entries, err = f.vault.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1, "upsert by the same website must not add entries")

	second := entries[0]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := f.vault.DecryptEntry(second)
	require.NoError(t, err)
	assert.Equal(t, "pw2", got)
}

func TestVault_Delete(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw1"))

	removed, err := f.vault.Delete(ctx, "alice", "example.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.vault.Delete(ctx, "alice", "example.com")
	require.NoError(t, err)
	assert.False(t, removed)

	entries, err := f.vault.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVault_UsernamesAreIsolated(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw-a"))
	require.NoError(t, f.vault.Upsert(ctx, "bob", "example.com", "pw-b"))

	entries, err := f.vault.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := f.vault.DecryptEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, "pw-b", got)
}

func TestVault_ValidationErrors(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	err := f.vault.Upsert(ctx, "a/b", "example.com", "pw")
	assert.True(t, errors.Is(err, common.ErrorValidation))

	err = f.vault.Upsert(ctx, "alice", "", "pw")
	assert.True(t, errors.Is(err, common.ErrorValidation))

	err = f.vault.Upsert(ctx, "alice", "bad\nsite", "pw")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestVault_BackupRetention(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw"))
	}

	names, err := f.vault.Backups("alice")
	require.NoError(t, err)
	require.Len(t, names, 5, "retention must keep exactly the newest 5")
	assert.IsIncreasing(t, names)
}

func TestVault_BackupSnapshotIsEncryptedAndReadable(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw1"))

	names, err := f.vault.Backups("alice")
	require.NoError(t, err)
	require.Len(t, names, 1)

	raw, err := os.ReadFile(filepath.Join(f.dir, "backups", names[0]))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "example.com", "snapshot must not expose plaintext fields")

	data, err := f.vault.backups.Read(names[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "example.com")
}

func TestVault_BackupsPerUsernameIndependent(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, f.vault.Upsert(ctx, "alice", "example.com", "pw"))
	}
	require.NoError(t, f.vault.Upsert(ctx, "bob", "example.com", "pw"))

	aliceNames, err := f.vault.Backups("alice")
	require.NoError(t, err)
	assert.Len(t, aliceNames, 2)

	bobNames, err := f.vault.Backups("bob")
	require.NoError(t, err)
	assert.Len(t, bobNames, 1)
}

func TestVault_BackupRetentionIsolatedForPrefixUsernames(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "bob-2", "example.com", "pw"))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.vault.Upsert(ctx, "bob", "example.com", "pw"))
	}

	// "bob" exceeding retention must not evict "bob-2"'s snapshot.
	names, err := f.vault.Backups("bob-2")
	require.NoError(t, err)
	assert.Len(t, names, 1)

	names, err = f.vault.Backups("bob")
	require.NoError(t, err)
	assert.Len(t, names, 2)
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "bob-2026"), "unexpected snapshot %q", name)
	}
}

func TestVault_UpsertRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	err := f.vault.Upsert(ctx, "alice", "example.com", strings.Repeat("a", policy.MaxFieldLength+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	entries, err := f.vault.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVault_LoadSkipsMalformedLines(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.vault.Upsert(ctx, "alice", "one.com", "pw1"))
	require.NoError(t, f.vault.Upsert(ctx, "alice", "two.com", "pw2"))

	path := filepath.Join(f.dir, "vault", "alice.dat")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	data = append(data, []byte("garbage line\n")...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	repo, err := NewFileRepository(filepath.Join(f.dir, "vault"))
	require.NoError(t, err)
	entries, skipped, err := repo.Load("alice")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, skipped)
}

func TestVault_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	build := func() *Vault {
		cipher, err := cryptox.NewCipher(filepath.Join(dir, "vault.key"))
		require.NoError(t, err)
		repo, err := NewFileRepository(filepath.Join(dir, "vault"))
		require.NoError(t, err)
		backups, err := NewBackupManager(filepath.Join(dir, "backups"), cipher, 0)
		require.NoError(t, err)
		return NewVault(repo, backups, cipher, logging.NewDiscard())
	}

	v1 := build()
	require.NoError(t, v1.Upsert(ctx, "alice", "example.com", "pw1"))

	v2 := build()
	entries, err := v2.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := v2.DecryptEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, "pw1", got)
}
