package passhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", digest)

	assert.True(t, h.Verify("s3cret", digest))
	assert.False(t, h.Verify("wrong", digest))
	assert.False(t, h.Verify("s3cret", "not-a-digest"))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	d1, err := h.Hash("s3cret")
	require.NoError(t, err)
	d2, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, h.Verify("s3cret", d1))
	assert.True(t, h.Verify("s3cret", d2))
}

func TestNewBcrypt_ClampsInvalidCost(t *testing.T) {
	h := NewBcrypt(99)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
