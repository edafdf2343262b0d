package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenuesIsACopy(t *testing.T) {
	a := Venues()
	a[0].Events[0].Name = "changed"
	a[0].Name = "changed"

	b := Venues()
	assert.Equal(t, "Queer Comedy Night", b[0].Events[0].Name)
	assert.Equal(t, "The Bush Dyke Bar", b[0].Name)
}

func TestEventsAreTaggedAndUnique(t *testing.T) {
	evs := Events()
	require.Len(t, evs, 20)

	seen := map[string]bool{}
	for _, e := range evs {
		require.NotEmpty(t, e.Venue)
		require.False(t, seen[string(e.ID)], "duplicate id %s", e.ID)
		seen[string(e.ID)] = true
		assert.GreaterOrEqual(t, e.Enjoyment, 0.0)
		assert.LessOrEqual(t, e.Enjoyment, 5.0)
	}
}

func TestEveryVenueHasCoordinates(t *testing.T) {
	for _, v := range Venues() {
		_, ok := VenueCoordinates[v.Name]
		assert.True(t, ok, v.Name)
	}
}
