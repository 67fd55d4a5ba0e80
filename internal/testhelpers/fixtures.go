package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "testpassword123"

// PNGDataURI is a 1x1 transparent PNG encoded as a data URI.
const PNGDataURI = "data:image/png;base64," +
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateUser inserts a user whose email and names derive from username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateIngredient inserts one ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// Amounts maps ingredient ids to amounts for CreateRecipe.
type Amounts map[uuid.UUID]int

// CreateRecipe inserts a recipe by author with the given ingredient amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts Amounts) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and cook.",
		CookingTime: 10,
		Image:       "recipes/" + uuid.NewString() + ".png",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		for id, amount := range amounts {
			row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: id, Amount: amount}
			if err := tx.Omit("Ingredient").Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	}))
	return recipe
}
