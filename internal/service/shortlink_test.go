package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestShortLinkGetOrCreate(t *testing.T) {
	f := setup(t)
	links := service.NewShortLinkService(f.store, f.store)
	ctx := context.Background()

	bob := testhelpers.CreateUser(t, f.db, "bob")
	salt := testhelpers.CreateIngredient(t, f.db, "salt", "g")
	soup := testhelpers.CreateRecipe(t, f.db, bob, "soup", testhelpers.Amounts{salt.ID: 1})
	stew := testhelpers.CreateRecipe(t, f.db, bob, "stew", testhelpers.Amounts{salt.ID: 1})

	code, err := links.GetOrCreate(ctx, soup.ID)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	again, err := links.GetOrCreate(ctx, soup.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	other, err := links.GetOrCreate(ctx, stew.ID)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)

	_, err = links.GetOrCreate(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShortLinkResolve(t *testing.T) {
	f := setup(t)
	links := service.NewShortLinkService(f.store, f.store)
	ctx := context.Background()

	bob := testhelpers.CreateUser(t, f.db, "bob")
	salt := testhelpers.CreateIngredient(t, f.db, "salt", "g")
	soup := testhelpers.CreateRecipe(t, f.db, bob, "soup", testhelpers.Amounts{salt.ID: 1})
	code, err := links.GetOrCreate(ctx, soup.ID)
	require.NoError(t, err)

	hits := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("hit"))
	misses := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("miss"))

	id, err := links.Resolve(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, soup.ID, id)

	_, err = links.Resolve(ctx, "missing1")
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("miss")))
}
