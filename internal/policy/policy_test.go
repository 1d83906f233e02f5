package policy

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/passvault/internal/common"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOk   bool
	}{
		{"all rules satisfied", "Str0ng!passwd", true},
		{"minimum length exactly", "Aa1!Aa1!Aa1!", true},
		{"symbol counts as punctuation", "Passw0rdpass$", true},
		{"too short", "Sh0rt!pw", false},
		{"no uppercase", "weak0!password", false},
		{"no lowercase", "WEAK0!PASSWORD", false},
		{"no digit", "Weakest!password", false},
		{"no punctuation", "Weak0password11", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password)
			if tt.wantOk {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		wantOk bool
	}{
		{"plain values", map[string]string{"username": "alice", "email": "a@b.cc"}, true},
		{"empty map", map[string]string{}, true},
		{"length at limit", map[string]string{"website": strings.Repeat("a", MaxFieldLength)}, true},
		{"over length limit", map[string]string{"website": strings.Repeat("a", MaxFieldLength+1)}, false},
		{"embedded newline", map[string]string{"email": "a@b.cc\nextra"}, false},
		{"embedded tab", map[string]string{"username": "ali\tce"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.fields)
			if tt.wantOk {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantOk   bool
	}{
		{"plain", "alice", true},
		{"mixed charset", "alice.B-2_x", true},
		{"empty", "", false},
		{"leading dot", ".alice", false},
		{"path separator", "a/b", false},
		{"parent traversal", "..", false},
		{"space", "ali ce", false},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantOk {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
			}
		})
	}
}

func TestValidateFields_NamesOffendingField(t *testing.T) {
	err := ValidateFields(map[string]string{"email": "bad\nvalue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}
