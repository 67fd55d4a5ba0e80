package service

import (
	"context"
	"errors"
	"sort"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// DecodeImageField decodes a data URI submitted in field. Bad payloads are
// reported as validation errors on that field.
func DecodeImageField(field, uri string) (*storage.Image, error) {
	img, err := storage.DecodeDataURI(uri)
	return img, imageFieldError(field, err)
}

// SniffImageField is DecodeImageField for raw uploaded bytes.
func SniffImageField(field string, data []byte) (*storage.Image, error) {
	img, err := storage.Sniff(data)
	return img, imageFieldError(field, err)
}

func imageFieldError(field string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrImageTooLarge):
		return validation.Errors{field: {"The submitted image is too large."}}
	default:
		return validation.Errors{field: {"Upload a valid image. The file you uploaded was either not an image or a corrupted image."}}
	}
}

// collectFieldErrors merges the field errors carried by err into errs.
func collectFieldErrors(errs validation.Errors, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, msgs := range fieldErrs {
			errs[field] = append(errs[field], msgs...)
		}
	}
}

// discardImage removes a stored object after the owning row changed. It only
// logs failures since the database write already committed.
func discardImage(ctx context.Context, media storage.Storage, key string) {
	if key == "" {
		return
	}
	if err := media.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete stored image")
	}
}

func presentUser(media storage.Storage, u *models.User, subscribed bool) types.UserResponse {
	resp := types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != "" {
		url := media.URL(u.Avatar)
		resp.Avatar = &url
	}
	return resp
}

func presentMinifiedRecipe(media storage.Storage, r *models.Recipe) types.RecipeMinifiedResponse {
	return types.RecipeMinifiedResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       media.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

// recipeFlags are the viewer dependent booleans of one recipe.
type recipeFlags struct {
	authorFollowed bool
	favorited      bool
	inCart         bool
}

func presentRecipe(media storage.Storage, r *models.Recipe, flags recipeFlags) types.RecipeResponse {
	items := make([]types.RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		items[i] = types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return types.RecipeResponse{
		ID:               r.ID,
		Author:           presentUser(media, &r.Author, flags.authorFollowed),
		Ingredients:      items,
		IsFavorited:      flags.favorited,
		IsInShoppingCart: flags.inCart,
		Name:             r.Name,
		Image:            media.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
