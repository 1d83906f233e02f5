// Package vault stores per-username named secrets encrypted at rest,
// persists them to flat files and keeps rotated backup snapshots.
package vault

import "time"

// Entry is one website/password pair belonging to a username. The website
// is the upsert key within a username's entry set; the id stays stable
// across updates. The password is held only as ciphertext.
type Entry struct {
	ID                string    `json:"id"`
	Website           string    `json:"website"`
	EncryptedPassword []byte    `json:"encrypted_password"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
