package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRoundsToFourPlaces(t *testing.T) {
	got := Format([]Label{
		{Label: "leaf curl", Score: 0.81937},
		{Label: "healthy", Score: 0.03612},
	})

	assert.Equal(t, []Label{
		{Label: "leaf curl", Score: 0.8194},
		{Label: "healthy", Score: 0.0361},
	}, got)
}

func TestFormatSortsDescending(t *testing.T) {
	got := Format([]Label{
		{Label: "healthy", Score: 0.0361},
		{Label: "leaf curl", Score: 0.8194},
		{Label: "whitefly", Score: 0.1033},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "leaf curl", got[0].Label)
	assert.Equal(t, "whitefly", got[1].Label)
	assert.Equal(t, "healthy", got[2].Label)
}

func TestFormatStableTieBreak(t *testing.T) {
	got := Format([]Label{
		{Label: "first", Score: 0.5},
		{Label: "second", Score: 0.5},
		{Label: "third", Score: 0.5},
	})

	assert.Equal(t, "first", got[0].Label)
	assert.Equal(t, "second", got[1].Label)
	assert.Equal(t, "third", got[2].Label)
}

func TestFormatEmptyIsNonNil(t *testing.T) {
	got := Format(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFormatDoesNotMutateInput(t *testing.T) {
	in := []Label{
		{Label: "b", Score: 0.11111},
		{Label: "a", Score: 0.99999},
	}
	Format(in)

	assert.Equal(t, "b", in[0].Label)
	assert.Equal(t, 0.11111, in[0].Score)
}
