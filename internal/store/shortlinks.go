package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

func (s *Store) GetShortLink(ctx context.Context, recipeID uuid.UUID) (*models.RecipeShortLink, error) {
	var link models.RecipeShortLink
	if err := s.db.WithContext(ctx).First(&link, "recipe_id = ?", recipeID).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (s *Store) GetShortLinkByCode(ctx context.Context, code string) (*models.RecipeShortLink, error) {
	var link models.RecipeShortLink
	if err := s.db.WithContext(ctx).First(&link, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// CreateShortLink inserts a link. Either the recipe already having a link or
// the code already being taken is ErrConflict.
func (s *Store) CreateShortLink(ctx context.Context, link *models.RecipeShortLink) error {
	return translate(s.db.WithContext(ctx).Create(link).Error)
}
