package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledThemeUsesFallbacks(t *testing.T) {
	require.NoError(t, Initialize(""))
	assert.False(t, IsEnabled())
	assert.Nil(t, Current())

	levels := []Colors{Normal(), Info(), Warning(), Alert()}
	seen := map[[3]uint32]bool{}
	for _, c := range levels {
		require.NotNil(t, c.Bg)
		require.NotNil(t, c.Fg)
		require.NotNil(t, c.Border)
		r, g, b, _ := c.Bg.RGBA()
		key := [3]uint32{r, g, b}
		assert.False(t, seen[key], "urgency backgrounds must differ")
		seen[key] = true
	}
}

func TestUnknownThemeFallsBackToDefault(t *testing.T) {
	t.Cleanup(func() { _ = Initialize("") })

	require.NoError(t, Initialize("no-such-theme"))
	assert.True(t, IsEnabled())
	assert.NotNil(t, Alert().Bg)
}
