// Package keeper wires the engine together and exposes the boundary
// operations consumed by the CLI: registration, login and sessions, the
// reset flow, secret CRUD gated by session validity, and password
// generation. Every operation logs its outcome; the log is a side channel
// the engine never reads back.
package keeper

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/credentials"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/passgen"
	"github.com/dmitrijs2005/passvault/internal/ratelimit"
	"github.com/dmitrijs2005/passvault/internal/reset"
	"github.com/dmitrijs2005/passvault/internal/session"
	"github.com/dmitrijs2005/passvault/internal/vault"
)

// Keeper owns every store and registry. Construct one per process and pass
// it by reference; there is no ambient state.
type Keeper struct {
	logger   logging.Logger
	creds    *credentials.Store
	sessions *session.Registry
	resets   *reset.Registry
	vault    *vault.Vault
}

// New builds the full engine under cfg.DataDir. The identity store and the
// vault get independent ciphers with separate key files, so a key
// compromise in one domain does not compromise the other.
func New(cfg *config.Config, logger logging.Logger) (*Keeper, error) {
	identityCipher, err := cryptox.NewCipher(cfg.IdentityKeyFile())
	if err != nil {
		return nil, fmt.Errorf("init identity cipher: %w", err)
	}
	vaultCipher, err := cryptox.NewCipher(cfg.VaultKeyFile())
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}

	limiter := ratelimit.NewLimiter(cfg.LockoutThreshold, cfg.LockoutWindow, cfg.LockoutDuration)

	creds, err := credentials.NewStore(
		credentials.NewFileRepository(cfg.IdentityFile()),
		identityCipher,
		limiter,
		logger.With("component", "credentials"),
	)
	if err != nil {
		return nil, err
	}

	vaultRepo, err := vault.NewFileRepository(cfg.VaultDir())
	if err != nil {
		return nil, err
	}
	backups, err := vault.NewBackupManager(cfg.BackupDir(), vaultCipher, cfg.BackupsKept)
	if err != nil {
		return nil, err
	}

	return &Keeper{
		logger:   logger,
		creds:    creds,
		sessions: session.NewRegistry(cfg.SessionTTL),
		resets:   reset.NewRegistry(cfg.ResetTokenTTL),
		vault:    vault.NewVault(vaultRepo, backups, vaultCipher, logger.With("component", "vault")),
	}, nil
}

// Register creates a new identity.
func (k *Keeper) Register(ctx context.Context, username, email, password string) error {
	if err := k.creds.Register(ctx, username, email, password); err != nil {
		k.logger.Warn(ctx, "registration rejected", "username", username, "error", err.Error())
		return err
	}
	k.logger.Info(ctx, "user registered", "username", username)
	return nil
}

// Login verifies credentials and issues a session token. Wrong credentials
// and lockout are both reported as common.ErrorUnauthorized so the caller
// cannot probe lockout state.
func (k *Keeper) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := k.creds.Authenticate(ctx, username, password)
	if err != nil {
		k.logger.Error(ctx, "authentication failed", "username", username, "error", err.Error())
		return "", fmt.Errorf("%w: authentication unavailable", common.ErrorInternal)
	}
	if !ok {
		k.logger.Info(ctx, "login denied", "username", username)
		return "", common.ErrorUnauthorized
	}

	id, err := k.sessions.Create(username)
	if err != nil {
		k.logger.Error(ctx, "session creation failed", "username", username, "error", err.Error())
		return "", fmt.Errorf("%w: session creation failed", common.ErrorInternal)
	}
	k.logger.Info(ctx, "login succeeded", "username", username)
	return id, nil
}

// ValidateSession reports whether a session token is live.
func (k *Keeper) ValidateSession(sessionID string) bool {
	return k.sessions.Validate(sessionID)
}

// SessionUsername resolves a live session to its username.
func (k *Keeper) SessionUsername(sessionID string) (string, bool) {
	return k.sessions.UsernameOf(sessionID)
}

// Logout ends a session immediately.
func (k *Keeper) Logout(ctx context.Context, sessionID string) {
	if username, ok := k.sessions.UsernameOf(sessionID); ok {
		k.logger.Info(ctx, "logout", "username", username)
	}
	k.sessions.End(sessionID)
}

// IssueResetToken creates a reset token for an existing identity. Unknown
// usernames fail with common.ErrorNotFound; callers outside the system
// boundary must not reveal that distinction.
func (k *Keeper) IssueResetToken(ctx context.Context, username string) (string, error) {
	if !k.creds.Exists(username) {
		k.logger.Info(ctx, "reset token refused for unknown username", "username", username)
		return "", fmt.Errorf("%w: username %q", common.ErrorNotFound, username)
	}
	token, err := k.resets.Issue(username)
	if err != nil {
		return "", fmt.Errorf("%w: token generation failed", common.ErrorInternal)
	}
	k.logger.Info(ctx, "reset token issued", "username", username)
	return token, nil
}

// ValidateResetToken resolves a reset token without consuming it.
func (k *Keeper) ValidateResetToken(token string) (string, error) {
	return k.resets.Validate(token)
}

// ResetPassword replaces the credential named by a valid reset token. The
// token is consumed only after the update succeeds, so a rejected new
// password leaves the token usable within its expiry.
func (k *Keeper) ResetPassword(ctx context.Context, token, newPassword string) error {
	username, err := k.resets.Validate(token)
	if err != nil {
		k.logger.Warn(ctx, "password reset with bad token", "error", err.Error())
		return err
	}
	if err := k.creds.UpdatePassword(ctx, username, newPassword); err != nil {
		k.logger.Warn(ctx, "password reset rejected", "username", username, "error", err.Error())
		return err
	}
	k.resets.Consume(token)
	k.logger.Info(ctx, "password reset", "username", username)
	return nil
}

// UpsertSecret stores a website/password pair for the session's owner.
func (k *Keeper) UpsertSecret(ctx context.Context, sessionID, website, password string) error {
	username, ok := k.sessions.UsernameOf(sessionID)
	if !ok {
		return common.ErrorUnauthorized
	}
	if err := k.vault.Upsert(ctx, username, website, password); err != nil {
		k.logger.Error(ctx, "secret upsert failed", "username", username, "website", website, "error", err.Error())
		return err
	}
	k.logger.Info(ctx, "secret upserted", "username", username, "website", website)
	return nil
}

// ListSecrets returns the session owner's entries with ciphertext intact.
func (k *Keeper) ListSecrets(ctx context.Context, sessionID string) ([]vault.Entry, error) {
	username, ok := k.sessions.UsernameOf(sessionID)
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return k.vault.List(ctx, username)
}

// DecryptSecret recovers one entry's plaintext for a live session.
func (k *Keeper) DecryptSecret(ctx context.Context, sessionID string, e vault.Entry) (string, error) {
	if !k.sessions.Validate(sessionID) {
		return "", common.ErrorUnauthorized
	}
	plaintext, err := k.vault.DecryptEntry(e)
	if err != nil {
		k.logger.Error(ctx, "secret decryption failed", "website", e.Website)
		return "", err
	}
	return plaintext, nil
}

// DeleteSecret removes a website entry for the session's owner and reports
// whether a removal occurred.
func (k *Keeper) DeleteSecret(ctx context.Context, sessionID, website string) (bool, error) {
	username, ok := k.sessions.UsernameOf(sessionID)
	if !ok {
		return false, common.ErrorUnauthorized
	}
	removed, err := k.vault.Delete(ctx, username, website)
	if err != nil {
		k.logger.Error(ctx, "secret delete failed", "username", username, "website", website, "error", err.Error())
		return false, err
	}
	if removed {
		k.logger.Info(ctx, "secret deleted", "username", username, "website", website)
	}
	return removed, nil
}

// GeneratePassword produces a random password satisfying the strength policy.
func (k *Keeper) GeneratePassword(length int) (string, error) {
	if length == 0 {
		length = passgen.DefaultLength
	}
	return passgen.Generate(length)
}
