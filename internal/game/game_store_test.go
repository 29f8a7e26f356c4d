package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndLookup(t *testing.T) {
	s := NewStore()

	g, err := s.Create("friday-night")
	require.NoError(t, err)

	byID, ok := s.Get(g.ID)
	require.True(t, ok)
	assert.Same(t, g, byID)

	byName, ok := s.GetByName("friday-night")
	require.True(t, ok)
	assert.Same(t, g, byName)

	_, ok = s.GetByName("saturday-night")
	assert.False(t, ok)
}

func TestStoreRejectsDuplicateName(t *testing.T) {
	s := NewStore()
	_, err := s.Create("friday-night")
	require.NoError(t, err)

	_, err = s.Create("friday-night")
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Len(t, s.Games(), 1)
}

func TestStoreDeleteFreesName(t *testing.T) {
	s := NewStore()
	g, err := s.Create("friday-night")
	require.NoError(t, err)

	s.Delete(g.ID)
	_, ok := s.Get(g.ID)
	assert.False(t, ok)

	_, err = s.Create("friday-night")
	assert.NoError(t, err)
}
