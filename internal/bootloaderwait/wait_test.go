package bootloaderwait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffNewSingleAddition(t *testing.T) {
	before := map[string]struct{}{"A": {}}
	now := []string{"A", "B"}

	path, err := diffNew(before, now)
	require.NoError(t, err)
	assert.Equal(t, "B", path)
}

func TestDiffNewAmbiguous(t *testing.T) {
	before := map[string]struct{}{"A": {}}
	now := []string{"A", "B", "C"}

	_, err := diffNew(before, now)
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, ErrAmbiguous, werr.Kind)
	assert.Equal(t, 2, werr.Count)
}

func TestDiffNewNoneYet(t *testing.T) {
	before := map[string]struct{}{"A": {}}
	now := []string{"A"}

	path, err := diffNew(before, now)
	require.NoError(t, err)
	assert.Empty(t, path)
}
