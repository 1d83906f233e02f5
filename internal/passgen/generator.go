// Package passgen produces random passwords that satisfy the strength
// policy. Every character is drawn from a cryptographically secure source,
// not just the retry decision.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/policy"
)

// DefaultLength is the password length used when callers have no preference.
const DefaultLength = 16

const (
	lower    = "abcdefghijklmnopqrstuvwxyz"
	upper    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   = "0123456789"
	punct    = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	alphabet = lower + upper + digits + punct
)

// Generate returns a random password of exactly length characters drawn
// uniformly from letters, digits and punctuation. Candidates missing one of
// the composition classes are rejected and resampled, so the result always
// passes policy.Validate. Lengths below the policy minimum are rejected
// since no candidate could ever satisfy it.
func Generate(length int) (string, error) {
	if length < policy.MinPasswordLength {
		return "", fmt.Errorf("%w: length must be at least %d", common.ErrorValidation, policy.MinPasswordLength)
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)

	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("read random: %w", err)
			}
			buf[i] = alphabet[n.Int64()]
		}
		candidate := string(buf)
		if policy.Validate(candidate) == nil {
			common.WipeByteArray(buf)
			return candidate, nil
		}
	}
}
