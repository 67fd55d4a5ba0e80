package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/store"
)

const (
	shortCodeBytes    = 6 // 8 characters once encoded
	shortCodeAttempts = 5
)

// ShortLinkService hands out stable short codes for recipes.
type ShortLinkService struct {
	links   store.ShortLinkStore
	recipes store.RecipeStore
	newCode func() (string, error)
}

func NewShortLinkService(links store.ShortLinkStore, recipes store.RecipeStore) *ShortLinkService {
	return &ShortLinkService{links: links, recipes: recipes, newCode: randomCode}
}

func randomCode() (string, error) {
	buf := make([]byte, shortCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GetOrCreate returns the recipe's code, creating it on first use. Once
// created a code never changes.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID uuid.UUID) (string, error) {
	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return "", fromStore(err, "Recipe not found.", "")
	}

	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		link, err := s.links.GetShortLink(ctx, recipeID)
		if err == nil {
			return link.Code, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}

		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		err = s.links.CreateShortLink(ctx, &models.RecipeShortLink{RecipeID: recipeID, Code: code})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return "", err
		}
		// Either another request linked this recipe first, picked up by the
		// next lookup, or the code is taken and a new one is drawn.
		logging.Ctx(ctx).Debug().Str("recipe_id", recipeID.String()).Int("attempt", attempt+1).Msg("short code collision")
	}
	return "", fmt.Errorf("failed to allocate a short code for recipe %s after %d attempts", recipeID, shortCodeAttempts)
}

// Resolve maps a code back to its recipe.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	link, err := s.links.GetShortLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordShortLinkResolution(false)
		}
		return uuid.Nil, fromStore(err, "Short link not found.", "")
	}
	metrics.RecordShortLinkResolution(true)
	return link.RecipeID, nil
}
