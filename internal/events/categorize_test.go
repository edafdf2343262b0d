package events

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/seed"
	"eventhub/pkg/models"
)

func ids(evs []models.Event) []models.ID {
	out := make([]models.ID, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.ID)
	}
	return out
}

func TestCategorizeExample(t *testing.T) {
	input := []models.Event{
		{ID: "1", Name: "Drag Bingo", Crowd: 50},
		{ID: "2", Name: "Jazz Night", Crowd: 80},
		{ID: "3", Name: "Drag Jazz Bash", Crowd: 10},
	}

	got := Categorize(input)

	// "Drag Bingo" also hits the social "bingo" keyword.
	assert.Equal(t, []models.ID{"1", "3"}, ids(got[models.CategoryQueer]))
	assert.Equal(t, []models.ID{"2", "3"}, ids(got[models.CategoryMusic]))
	assert.Equal(t, []models.ID{"1"}, ids(got[models.CategorySocial]))
	assert.Empty(t, got[models.CategoryDance])
	assert.Empty(t, got[models.CategoryCulture])
	assert.Equal(t, []models.ID{"2", "1", "3"}, ids(got[models.CategoryPopular]))
}

func TestCategorizeSingleEventMatchesExactlyItsKeywords(t *testing.T) {
	tests := []struct {
		event models.Event
		want  []string
	}{
		{models.Event{Name: "Quiet Reading"}, nil},
		{models.Event{Name: "KARAOKE"}, []string{models.CategorySocial}},
		{models.Event{Name: "Sunday", Description: "Reggae and soul"}, []string{models.CategoryCulture}},
		{models.Event{Name: "Night", Venue: "Cafe Erzulie"}, nil},
		{models.Event{Name: "Night", Venue: "Haitian Corner"}, []string{models.CategoryCulture}},
		{models.Event{Name: "Disco Pride Jazz"}, []string{models.CategoryQueer, models.CategoryMusic, models.CategoryDance}},
	}

	for _, tt := range tests {
		t.Run(tt.event.Name+"/"+tt.event.Venue, func(t *testing.T) {
			got := Categorize([]models.Event{tt.event})
			for _, name := range models.ContentCategoryNames() {
				want := 0
				for _, w := range tt.want {
					if w == name {
						want = 1
					}
				}
				assert.Len(t, got[name], want, name)
			}
			assert.Equal(t, tt.want, MatchingCategories(tt.event))
			assert.Len(t, got[models.CategoryPopular], 1)
		})
	}
}

func TestCategorizeEmptyInput(t *testing.T) {
	got := Categorize(nil)
	require.Len(t, got, len(models.Categories))
	for _, c := range models.Categories {
		evs, ok := got[c.Name]
		require.True(t, ok, c.Name)
		assert.NotNil(t, evs)
		assert.Empty(t, evs)
	}
}

func TestCategorizeDoesNotMutateInput(t *testing.T) {
	input := []models.Event{
		{ID: "a", Name: "small party", Crowd: 1},
		{ID: "b", Name: "big party", Crowd: 100},
	}
	_ = Categorize(input)
	assert.Equal(t, []models.ID{"a", "b"}, ids(input))
}

func TestTopPopularCapsAndIsStable(t *testing.T) {
	var input []models.Event
	for i := 0; i < 40; i++ {
		input = append(input, models.Event{ID: models.ID(fmt.Sprint(i)), Crowd: i % 4})
	}

	top := TopPopular(input, models.TopPopularLimit)
	require.Len(t, top, 25)
	for i := 1; i < len(top); i++ {
		require.GreaterOrEqual(t, top[i-1].Crowd, top[i].Crowd)
	}
	// crowd 3 events come first, in input order
	assert.Equal(t, []models.ID{"3", "7", "11", "15", "19", "23", "27", "31", "35", "39"}, ids(top[:10]))
}

func TestCategorizeSeedData(t *testing.T) {
	got := Categorize(seed.Events())
	assert.Len(t, got[models.CategoryPopular], 20)

	queer := ids(got[models.CategoryQueer])
	// every Bush Dyke Bar event matches "dyke" through the venue name
	for _, id := range []models.ID{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "19"} {
		assert.Contains(t, queer, id)
	}
	assert.Contains(t, ids(got[models.CategoryCulture]), models.ID("20"))
}
