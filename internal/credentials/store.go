package credentials

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/policy"
	"github.com/dmitrijs2005/passvault/internal/ratelimit"
)

// Store owns the identity records. It is safe for concurrent use; at most
// one mutation is in flight at a time.
type Store struct {
	mu         sync.Mutex
	repo       *FileRepository
	cipher     *cryptox.Cipher
	limiter    *ratelimit.Limiter
	logger     logging.Logger
	identities []Identity
	index      map[string]int
	now        func() time.Time
}

// NewStore loads existing identities from the repository and builds the
// in-memory index. Malformed records found on load are skipped and counted.
func NewStore(repo *FileRepository, cipher *cryptox.Cipher, limiter *ratelimit.Limiter, logger logging.Logger) (*Store, error) {
	identities, skipped, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load identities: %w", err)
	}
	if skipped > 0 {
		logger.Warn(context.Background(), "skipped malformed identity records", "count", skipped)
	}

	index := make(map[string]int, len(identities))
	for i, id := range identities {
		index[id.Username] = i
	}

	return &Store{
		repo:       repo,
		cipher:     cipher,
		limiter:    limiter,
		logger:     logger,
		identities: identities,
		index:      index,
		now:        time.Now,
	}, nil
}

// Register validates the new identity, encrypts its password and appends it
// to the store. Duplicate usernames fail with common.ErrorAlreadyExists.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	if err := policy.ValidateUsername(username); err != nil {
		return err
	}
	if err := policy.ValidateFields(map[string]string{"email": email, "password": password}); err != nil {
		return err
	}
	if err := policy.Validate(password); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[username]; ok {
		return fmt.Errorf("%w: username %q", common.ErrorAlreadyExists, username)
	}

	encrypted, err := s.cipher.Encrypt([]byte(password))
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}

	s.identities = append(s.identities, Identity{
		Username:          username,
		Email:             email,
		EncryptedPassword: encrypted,
		CreatedAt:         s.now().UTC(),
	})
	s.index[username] = len(s.identities) - 1

	if err := s.repo.Save(s.identities); err != nil {
		// Roll the in-memory state back so it mirrors the file.
		s.identities = s.identities[:len(s.identities)-1]
		delete(s.index, username)
		return err
	}
	return nil
}

// Authenticate verifies a username/password pair. A locked-out username is
// denied without touching the records, indistinguishably from a wrong
// password. Failures are recorded against the limiter only for a
// found-but-mismatched record, never for unknown usernames.
func (s *Store) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if s.limiter.IsLocked(username) {
		s.logger.Warn(ctx, "authentication denied: account locked out", "username", username)
		return false, nil
	}

	s.mu.Lock()
	i, ok := s.index[username]
	var encrypted []byte
	if ok {
		encrypted = s.identities[i].EncryptedPassword
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	stored, err := s.cipher.Decrypt(encrypted)
	if err != nil {
		s.logger.Error(ctx, "stored credential unreadable", "username", username)
		return false, fmt.Errorf("decrypt stored credential: %w", err)
	}
	defer common.WipeByteArray(stored)

	if subtle.ConstantTimeCompare(stored, []byte(password)) != 1 {
		s.limiter.RecordFailure(username)
		if s.limiter.CheckAndLock(username) {
			s.logger.Warn(ctx, "account locked out after repeated failures", "username", username)
		}
		return false, nil
	}
	return true, nil
}

// Exists reports whether a username is registered.
func (s *Store) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[username]
	return ok
}

// UpdatePassword replaces the stored credential for username. The new
// password is validated like a registration one and re-encrypted; unknown
// usernames fail with common.ErrorNotFound. This is the write half of the
// reset flow.
func (s *Store) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if err := policy.Validate(newPassword); err != nil {
		return err
	}
	if err := policy.ValidateFields(map[string]string{"password": newPassword}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[username]
	if !ok {
		return fmt.Errorf("%w: username %q", common.ErrorNotFound, username)
	}

	encrypted, err := s.cipher.Encrypt([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}

	previous := s.identities[i].EncryptedPassword
	s.identities[i].EncryptedPassword = encrypted

	if err := s.repo.Save(s.identities); err != nil {
		s.identities[i].EncryptedPassword = previous
		return err
	}
	return nil
}
