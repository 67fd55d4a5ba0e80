package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestShortLinkRetriesOnCodeCollision(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	st := store.New(db)
	ctx := context.Background()

	bob := testhelpers.CreateUser(t, db, "bob")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	soup := testhelpers.CreateRecipe(t, db, bob, "soup", testhelpers.Amounts{salt.ID: 1})
	stew := testhelpers.CreateRecipe(t, db, bob, "stew", testhelpers.Amounts{salt.ID: 1})
	require.NoError(t, st.CreateShortLink(ctx, &models.RecipeShortLink{RecipeID: soup.ID, Code: "taken000"}))

	codes := []string{"taken000", "taken000", "fresh000"}
	svc := NewShortLinkService(st, st)
	svc.newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	code, err := svc.GetOrCreate(ctx, stew.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh000", code)
	assert.Empty(t, codes)
}

func TestShortLinkGivesUpAfterAttempts(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	st := store.New(db)
	ctx := context.Background()

	bob := testhelpers.CreateUser(t, db, "bob")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	soup := testhelpers.CreateRecipe(t, db, bob, "soup", testhelpers.Amounts{salt.ID: 1})
	stew := testhelpers.CreateRecipe(t, db, bob, "stew", testhelpers.Amounts{salt.ID: 1})
	require.NoError(t, st.CreateShortLink(ctx, &models.RecipeShortLink{RecipeID: soup.ID, Code: "taken000"}))

	calls := 0
	svc := NewShortLinkService(st, st)
	svc.newCode = func() (string, error) {
		calls++
		return "taken000", nil
	}

	_, err := svc.GetOrCreate(ctx, stew.ID)
	assert.Error(t, err)
	assert.Equal(t, shortCodeAttempts, calls)
}
