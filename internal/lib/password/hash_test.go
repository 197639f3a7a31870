package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fast = NewHasher(bcrypt.MinCost)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "exactly 72 bytes", password: strings.Repeat("a", 72)},
		{name: "short password", password: "short"},
		{name: "too long password", password: strings.Repeat("a", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := fast.GetHash(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTooLong)
				assert.Empty(t, gotHash)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, gotHash)
			assert.NotEqual(t, tt.password, gotHash)
			assert.True(t, fast.Verify(tt.password, gotHash))
		})
	}
}

func TestVerify(t *testing.T) {
	correctHash, err := fast.GetHash("correct_password")
	require.NoError(t, err)
	anotherHash, err := fast.GetHash("another_password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		hash        string
		password    string
		shouldMatch bool
	}{
		{name: "matching password", hash: correctHash, password: "correct_password", shouldMatch: true},
		{name: "wrong password", hash: correctHash, password: "wrong_password"},
		{name: "different hash same password", hash: anotherHash, password: "correct_password"},
		{name: "empty password", hash: correctHash, password: ""},
		{name: "garbage hash", hash: "not-a-bcrypt-hash", password: "correct_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shouldMatch, fast.Verify(tt.password, tt.hash))
		})
	}
}

func TestGetHash_SaltedAndCostApplied(t *testing.T) {
	hash1, err := fast.GetHash("same")
	require.NoError(t, err)
	hash2, err := fast.GetHash("same")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2, "each hash must use a fresh salt")

	cost, err := bcrypt.Cost([]byte(hash1))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestNewHasher_LowCostFallsBackToDefault(t *testing.T) {
	h := NewHasher(0)
	assert.Equal(t, Cost, h.cost)
}
