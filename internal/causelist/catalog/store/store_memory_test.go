package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causelist/internal/causelist/models"
	"causelist/pkg/platform/sentinel"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "state", Key(models.LevelState, nil))
	assert.Equal(t, "complex/Delhi/North", Key(models.LevelComplex, []string{"Delhi", "North"}))
	assert.NotEqual(t,
		Key(models.LevelComplex, []string{"A/B", "C"}),
		Key(models.LevelComplex, []string{"A", "B/C"}),
	)
}

func TestInMemoryCache_SaveFind(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(8, time.Minute)

	_, err := c.Find(ctx, models.LevelDistrict, []string{"Delhi"})
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	labels := []string{"North", "South"}
	require.NoError(t, c.Save(ctx, []string{"Delhi"}, models.NewOptionList(models.LevelDistrict, labels)))
	labels[0] = "mutated"

	got, err := c.Find(ctx, models.LevelDistrict, []string{"Delhi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, got.Labels)
	assert.Equal(t, models.LevelDistrict, got.Level)

	got.Labels[0] = "mutated"
	again, err := c.Find(ctx, models.LevelDistrict, []string{"Delhi"})
	require.NoError(t, err)
	assert.Equal(t, "North", again.Labels[0])

	_, err = c.Find(ctx, models.LevelDistrict, []string{"Goa"})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(8, 20*time.Millisecond)
	require.NoError(t, c.Save(ctx, nil, models.NewOptionList(models.LevelState, []string{"Delhi"})))

	assert.Eventually(t, func() bool {
		_, err := c.Find(ctx, models.LevelState, nil)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(2, time.Minute)
	for _, s := range []string{"A", "B", "C"} {
		require.NoError(t, c.Save(ctx, []string{s}, models.NewOptionList(models.LevelDistrict, []string{s + "1"})))
	}
	assert.Equal(t, 2, c.Len())
	_, err := c.Find(ctx, models.LevelDistrict, []string{"A"})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
