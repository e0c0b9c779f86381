package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapIfNotNilReturnsNilForNil(t *testing.T) {
	assert.NoError(t, WrapIfNotNil(nil))
}

func TestWrapIfNotNilIncludesCallerAndContext(t *testing.T) {
	base := errors.New("boom")
	err := WrapIfNotNil(base, "uploading")

	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "TestWrapIfNotNilIncludesCallerAndContext")
	assert.Contains(t, err.Error(), "uploading")
}

func TestContainsErrorSubstringWalksChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("middle: %w", errors.New("Error 403 forbidden")))

	assert.True(t, ContainsErrorSubstring(err, "403"))
	assert.False(t, ContainsErrorSubstring(err, "413"))
	assert.False(t, ContainsErrorSubstring(nil, "403"))
}

func TestContainsAnyErrorSubstring(t *testing.T) {
	err := errors.New("NO_RESPONSE")

	assert.True(t, ContainsAnyErrorSubstring(err, "JSON", "NO_RESPONSE"))
	assert.False(t, ContainsAnyErrorSubstring(err, "JSON", "413"))
	assert.False(t, ContainsAnyErrorSubstring(err))
}
