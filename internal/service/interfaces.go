package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisteredUserResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error
}

// IUserService defines the interface for profile and subscription operations
type IUserService interface {
	ListUsers(ctx context.Context, viewer uuid.UUID, page store.Page) ([]types.UserResponse, int64, error)
	GetUser(ctx context.Context, viewer, id uuid.UUID) (*types.UserResponse, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, img *storage.Image) (*types.AvatarResponse, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, userID uuid.UUID, page store.Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, viewer uuid.UUID, query RecipeQuery, page store.Page) ([]types.RecipeResponse, int64, error)
	GetRecipe(ctx context.Context, viewer, id uuid.UUID) (*types.RecipeResponse, error)
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	AddToSet(ctx context.Context, rel store.Relation, userID, recipeID uuid.UUID) (*types.RecipeMinifiedResponse, error)
	RemoveFromSet(ctx context.Context, rel store.Relation, userID, recipeID uuid.UUID) error
}

type IIngredientService interface {
	ListIngredients(ctx context.Context, prefix string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error)
}

type IShoppingListService interface {
	Export(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type IShortLinkService interface {
	GetOrCreate(ctx context.Context, recipeID uuid.UUID) (string, error)
	Resolve(ctx context.Context, code string) (uuid.UUID, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IShortLinkService    = (*ShortLinkService)(nil)
)
