// Package credentials registers operator identities and verifies their
// credentials against an encrypted flat-file store.
package credentials

import "time"

// Identity is one registered username/email/credential triple. The password
// is held only as ciphertext; plaintext never reaches the durable store.
type Identity struct {
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	EncryptedPassword []byte    `json:"encrypted_password"`
	CreatedAt         time.Time `json:"created_at"`
}
