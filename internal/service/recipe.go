package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const recipeImagePrefix = "recipes"

// RecipeQuery selects recipes for a list request. The saved set filters only
// apply to an authenticated viewer.
type RecipeQuery struct {
	AuthorID         *uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService struct {
	recipes     store.RecipeStore
	ingredients store.IngredientStore
	relations   store.RelationStore
	follows     store.FollowStore
	media       storage.Storage
}

func NewRecipeService(
	recipes store.RecipeStore,
	ingredients store.IngredientStore,
	relations store.RelationStore,
	follows store.FollowStore,
	media storage.Storage,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		ingredients: ingredients,
		relations:   relations,
		follows:     follows,
		media:       media,
	}
}

// ListRecipes returns a page of recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer uuid.UUID, query RecipeQuery, page store.Page) ([]types.RecipeResponse, int64, error) {
	filter := store.RecipeFilter{AuthorID: query.AuthorID}
	if query.IsFavorited || query.IsInShoppingCart {
		if viewer == uuid.Nil {
			return []types.RecipeResponse{}, 0, nil
		}
		if query.IsFavorited {
			filter.FavoritedBy = &viewer
		}
		if query.IsInShoppingCart {
			filter.InCartOf = &viewer
		}
	}

	recipes, total, err := s.recipes.ListRecipes(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.present(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, viewer, id uuid.UUID) (*types.RecipeResponse, error) {
	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Recipe not found.", "")
	}
	out, err := s.present(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// present computes the viewer flags for a batch of recipes with one query
// per flag.
func (s *RecipeService) present(ctx context.Context, viewer uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	followed := map[uuid.UUID]bool{}
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	if viewer != uuid.Nil {
		recipeIDs := make([]uuid.UUID, len(recipes))
		authorIDs := make([]uuid.UUID, len(recipes))
		for i := range recipes {
			recipeIDs[i] = recipes[i].ID
			authorIDs[i] = recipes[i].AuthorID
		}

		var err error
		if followed, err = s.follows.FollowedAuthors(ctx, viewer, authorIDs); err != nil {
			return nil, err
		}
		if favorited, err = s.relations.RelatedRecipes(ctx, store.Favorites, viewer, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.relations.RelatedRecipes(ctx, store.ShoppingCart, viewer, recipeIDs); err != nil {
			return nil, err
		}
	}

	for i := range recipes {
		r := &recipes[i]
		out[i] = presentRecipe(s.media, r, recipeFlags{
			authorFollowed: followed[r.AuthorID],
			favorited:      favorited[r.ID],
			inCart:         inCart[r.ID],
		})
	}
	return out, nil
}

// checkIngredients rejects repeated and unknown ingredient ids and converts
// the submission into store rows.
func (s *RecipeService) checkIngredients(ctx context.Context, submitted []types.IngredientAmount, errs validation.Errors) ([]models.RecipeIngredient, error) {
	seen := make(map[uuid.UUID]bool, len(submitted))
	ids := make([]uuid.UUID, 0, len(submitted))
	items := make([]models.RecipeIngredient, 0, len(submitted))
	for _, item := range submitted {
		if seen[item.ID] {
			errs.Add("ingredients", "Ingredients must not repeat.")
			return nil, nil
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)
		items = append(items, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}

	known, err := s.ingredients.GetIngredients(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(known) != len(ids) {
		found := make(map[uuid.UUID]bool, len(known))
		for _, ing := range known {
			found[ing.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				errs.Add("ingredients", fmt.Sprintf("Ingredient %s does not exist.", id))
			}
		}
		return nil, nil
	}
	return items, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	errs := validation.Errors{}
	items, err := s.checkIngredients(ctx, req.Ingredients, errs)
	if err != nil {
		return nil, err
	}
	img, imgErr := DecodeImageField("image", req.Image)
	collectFieldErrors(errs, imgErr)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	key, err := storage.Put(ctx, s.media, recipeImagePrefix, img)
	if err != nil {
		return nil, err
	}
	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       key,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe, items); err != nil {
		discardImage(ctx, s.media, key)
		return nil, fromStore(err, "Recipe not found.", "You already have a recipe with this name.")
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipe.ID.String()).Str("author_id", authorID.String()).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// ownedRecipe loads a recipe and checks that userID wrote it.
func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Recipe not found.", "")
	}
	if recipe.AuthorID != userID {
		return nil, newError(ErrForbidden, "You do not have permission to perform this action.")
	}
	return recipe, nil
}

// UpdateRecipe replaces the ingredient list and any other submitted field.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	errs := validation.Errors{}
	items, err := s.checkIngredients(ctx, req.Ingredients, errs)
	if err != nil {
		return nil, err
	}
	var img *storage.Image
	if req.Image != nil {
		var imgErr error
		img, imgErr = DecodeImageField("image", *req.Image)
		collectFieldErrors(errs, imgErr)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}
	previous := ""
	if img != nil {
		key, err := storage.Put(ctx, s.media, recipeImagePrefix, img)
		if err != nil {
			return nil, err
		}
		previous, recipe.Image = recipe.Image, key
	}

	if err := s.recipes.UpdateRecipe(ctx, recipe, items); err != nil {
		if img != nil {
			discardImage(ctx, s.media, recipe.Image)
		}
		return nil, fromStore(err, "Recipe not found.", "You already have a recipe with this name.")
	}
	discardImage(ctx, s.media, previous)
	return s.GetRecipe(ctx, userID, recipe.ID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		return fromStore(err, "Recipe not found.", "")
	}
	discardImage(ctx, s.media, recipe.Image)
	logging.Ctx(ctx).Info().Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

var relationMessages = map[store.Relation]struct{ present, absent string }{
	store.Favorites:    {"Recipe is already in favorites.", "Recipe is not in favorites."},
	store.ShoppingCart: {"Recipe is already in the shopping cart.", "Recipe is not in the shopping cart."},
}

// AddToSet saves a recipe into one of the user's sets and returns its short
// form.
func (s *RecipeService) AddToSet(ctx context.Context, rel store.Relation, userID, recipeID uuid.UUID) (*types.RecipeMinifiedResponse, error) {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, fromStore(err, "Recipe not found.", "")
	}
	if err := s.relations.AddRelation(ctx, rel, userID, recipeID); err != nil {
		return nil, fromStore(err, "Recipe not found.", relationMessages[rel].present)
	}
	resp := presentMinifiedRecipe(s.media, recipe)
	return &resp, nil
}

func (s *RecipeService) RemoveFromSet(ctx context.Context, rel store.Relation, userID, recipeID uuid.UUID) error {
	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return fromStore(err, "Recipe not found.", "")
	}
	err := s.relations.RemoveRelation(ctx, rel, userID, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrRelationAbsent, relationMessages[rel].absent)
	}
	return err
}
