package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

func withRecipeAssociations(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Ingredients.Ingredient")
}

// CreateRecipe inserts the recipe and its ingredient rows in one
// transaction. A duplicate (author, name) or (recipe, ingredient) pair is
// ErrConflict and nothing is written.
func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe, items []models.RecipeIngredient) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translate(err)
		}
		return insertRecipeItems(tx, recipe.ID, items)
	})
}

// UpdateRecipe overwrites the recipe's editable columns and replaces its
// ingredient rows. The publication date never changes.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe, items []models.RecipeIngredient) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return translate(err)
		}
		return insertRecipeItems(tx, recipe.ID, items)
	})
}

func insertRecipeItems(tx *gorm.DB, recipeID uuid.UUID, items []models.RecipeIngredient) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
	}
	return translate(tx.Omit(clause.Associations).Create(&rows).Error)
}

// GetRecipe loads a recipe with its author and ingredient rows.
func (s *Store) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeAssociations(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

// ListRecipes returns recipes newest first along with the filtered total.
func (s *Store) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != nil {
		base = base.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.FavoritedBy != nil {
		base = base.Where("recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("author_id = ?", *filter.FavoritedBy))
	}
	if filter.InCartOf != nil {
		base = base.Where("recipes.id IN (?)",
			s.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("author_id = ?", *filter.InCartOf))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var recipes []models.Recipe
	q := page.apply(withRecipeAssociations(base.Session(&gorm.Session{})).Order("recipes.pub_date DESC"))
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, translate(err)
	}
	return recipes, total, nil
}

// DeleteRecipe removes a recipe and every row that references it.
func (s *Store) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return deleteRecipeRows(tx, []uuid.UUID{id})
	})
}

// deleteRecipeRows cascades by hand: ingredient rows, saved sets and short
// links first, then the recipes themselves. Must run inside a transaction.
func deleteRecipeRows(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	dependents := []interface{}{
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.RecipeShortLink{},
	}
	for _, model := range dependents {
		if err := tx.Where("recipe_id IN ?", ids).Delete(model).Error; err != nil {
			return translate(err)
		}
	}
	return translate(tx.Where("id IN ?", ids).Delete(&models.Recipe{}).Error)
}

// CountRecipesByAuthors returns the number of recipes per author. Authors
// without recipes are absent from the map.
func (s *Store) CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// NoLimit asks ListRecipesByAuthor for every recipe.
const NoLimit = -1

// ListRecipesByAuthor returns an author's newest recipes, at most limit of
// them. A negative limit returns all of them.
func (s *Store) ListRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit == 0 {
		return []models.Recipe{}, nil
	}
	q := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, translate(err)
	}
	return recipes, nil
}
