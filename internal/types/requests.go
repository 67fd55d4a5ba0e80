package types

import (
	"github.com/google/uuid"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128,maxbytes=72"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=128,maxbytes=72"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// SetAvatarRequest carries the avatar as a data URI.
type SetAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// IngredientAmount is one ingredient line of a recipe submission.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int       `json:"amount" validate:"min=1,max=32000"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Image       string             `json:"image" validate:"required"`
	Name        string             `json:"name" validate:"required,max=150"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"min=1,max=32000"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// The ingredient list is always replaced; other fields change only when
// present.
type UpdateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Image       *string            `json:"image" validate:"omitempty,min=1"`
	Name        *string            `json:"name" validate:"omitempty,min=1,max=150"`
	Text        *string            `json:"text" validate:"omitempty,min=1"`
	CookingTime *int               `json:"cooking_time" validate:"omitempty,min=1,max=32000"`
}
