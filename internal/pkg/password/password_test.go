package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, Verify("correct horse battery", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHashTokenIsStable(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashToken("other-token"))
}

func TestValidate(t *testing.T) {
	assert.False(t, Validate("short"))
	assert.True(t, Validate("12345678"))
}
