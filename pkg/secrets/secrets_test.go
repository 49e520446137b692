package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "votegate/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("ballot-box")
	require.NoError(t, err)
	assert.NotEqual(t, "ballot-box", hash)

	require.NoError(t, Verify("ballot-box", hash))

	err = Verify("wrong", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashRejects(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = Hash(strings.Repeat("x", 73))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestVerifyMalformedHash(t *testing.T) {
	err := Verify("anything", "not-a-bcrypt-hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
