package mockdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festifind/festifind/internal/model"
)

func TestFestivals(t *testing.T) {
	t.Run("five unique ids", func(t *testing.T) {
		fs := Festivals()
		require.Len(t, fs, 5)

		seen := map[string]bool{}
		for _, f := range fs {
			assert.False(t, seen[f.ID], "duplicate id %s", f.ID)
			seen[f.ID] = true
			assert.LessOrEqual(t, f.StartDate, f.EndDate, f.Name)
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		fs := Festivals()
		fs[0].Notes = "changed"
		assert.Empty(t, Festivals()[0].Notes)
	})
}

func TestFilter(t *testing.T) {
	assert.Len(t, Filter(model.Filter{}), 5)

	favs := Filter(model.Filter{Favorite: model.Bool(true)})
	require.Len(t, favs, 1)
	assert.Equal(t, "2", favs[0].ID)

	byID := Filter(model.Filter{ID: "4"})
	require.Len(t, byID, 1)
	assert.True(t, byID[0].IsArchived)

	none := Filter(model.Filter{ID: "missing"})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
