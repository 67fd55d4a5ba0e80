package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

func (r Relation) newRow(userID, recipeID uuid.UUID) (interface{}, error) {
	switch r {
	case Favorites:
		return &models.Favorite{AuthorID: userID, RecipeID: recipeID}, nil
	case ShoppingCart:
		return &models.ShoppingCart{AuthorID: userID, RecipeID: recipeID}, nil
	default:
		return nil, fmt.Errorf("unknown relation %q", string(r))
	}
}

func (r Relation) model() (interface{}, error) {
	return r.newRow(uuid.Nil, uuid.Nil)
}

// AddRelation saves recipeID into userID's set. An existing pair is
// ErrConflict.
func (s *Store) AddRelation(ctx context.Context, rel Relation, userID, recipeID uuid.UUID) error {
	row, err := rel.newRow(userID, recipeID)
	if err != nil {
		return err
	}
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

// RemoveRelation deletes the pair, or returns ErrNotFound if it was absent.
func (s *Store) RemoveRelation(ctx context.Context, rel Relation, userID, recipeID uuid.UUID) error {
	model, err := rel.model()
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("author_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RelatedRecipes reports which of recipeIDs are in userID's set.
func (s *Store) RelatedRecipes(ctx context.Context, rel Relation, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	model, err := rel.model()
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	var saved []uuid.UUID
	err = s.db.WithContext(ctx).Model(model).
		Where("author_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &saved).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, id := range saved {
		result[id] = true
	}
	return result, nil
}

// CountRelation returns the size of userID's set.
func (s *Store) CountRelation(ctx context.Context, rel Relation, userID uuid.UUID) (int64, error) {
	model, err := rel.model()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("author_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// ShoppingList sums the amounts of every ingredient row of every recipe in
// userID's cart, grouped by ingredient name and unit. Each row contributes,
// so equal amounts from different recipes add up. Lines are ordered by
// ascending total, then by name.
func (s *Store) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.author_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("total ASC, ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}
