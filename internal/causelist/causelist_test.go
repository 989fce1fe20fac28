package causelist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causelist/internal/causelist/backendtest"
	"causelist/internal/causelist/catalog/store"
	"causelist/internal/causelist/models"
	"causelist/internal/platform/config"
	"causelist/internal/platform/logger"
)

func TestNewBackend_RejectsBadURL(t *testing.T) {
	_, err := NewBackend(config.Backend{BaseURL: "not a url"}, logger.Discard(), nil)
	require.Error(t, err)
}

func TestNewCache_DefaultsToMemory(t *testing.T) {
	c := NewCache(config.Cache{Size: 4, TTL: time.Minute}, nil)
	assert.IsType(t, &store.InMemoryCache{}, c)
}

func TestWiredCatalogCachesOptionLists(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())
	client, err := NewBackend(config.Backend{
		BaseURL:         srv.URL,
		Timeout:         time.Second,
		Burst:           1,
		BreakerFailures: 3,
		BreakerCooldown: time.Second,
	}, logger.Discard(), nil)
	require.NoError(t, err)

	cat, err := NewCatalog(client, NewCache(config.Cache{Size: 16, TTL: time.Minute}, nil), logger.Discard(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	sel := models.Selection{State: "Delhi"}
	for range 3 {
		list, err := cat.Options(ctx, models.LevelDistrict, sel)
		require.NoError(t, err)
		assert.Equal(t, []string{"North", "South"}, list.Labels)
	}
	assert.Equal(t, 1, fake.CallCount("/get-districts/Delhi"))
}
