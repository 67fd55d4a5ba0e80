package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type fixture struct {
	db    *gorm.DB
	store *store.Store
	media *storage.LocalStore
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	media, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	return &fixture{db: db, store: store.New(db), media: media}
}
