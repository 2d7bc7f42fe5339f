package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestIDIsPrefixedAndUnique(t *testing.T) {
	first := NewRequestID()
	second := NewRequestID()

	assert.True(t, strings.HasPrefix(first.String(), "vr_"))
	assert.NotEqual(t, first, second)

	_, err := uuid.Parse(strings.TrimPrefix(first.String(), "vr_"))
	require.NoError(t, err)
}

func TestParseRequestID(t *testing.T) {
	t.Run("accepts a well formed id", func(t *testing.T) {
		id, ok := ParseRequestID("vr_550e8400-e29b-41d4-a716-446655440000")
		require.True(t, ok)
		assert.False(t, id.IsZero())
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		id, ok := ParseRequestID("  vr_abc  ")
		require.True(t, ok)
		assert.Equal(t, "vr_abc", id.String())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, ok := ParseRequestID("   ")
		assert.False(t, ok)
	})
}

func TestNewEventIDIsPrefixedAndUnique(t *testing.T) {
	first := NewEventID()
	second := NewEventID()

	assert.True(t, strings.HasPrefix(first.String(), "ev_"))
	assert.NotEqual(t, first, second)
}

func TestSubjectIDIsZero(t *testing.T) {
	assert.True(t, SubjectID("").IsZero())
	assert.False(t, SubjectID("sub_1").IsZero())
}
