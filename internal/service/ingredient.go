package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	ingredients store.IngredientStore
}

func NewIngredientService(ingredients store.IngredientStore) *IngredientService {
	return &IngredientService{ingredients: ingredients}
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix lists everything.
func (s *IngredientService) ListIngredients(ctx context.Context, prefix string) ([]types.IngredientResponse, error) {
	ingredients, err := s.ingredients.ListIngredients(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = presentIngredient(&ingredients[i])
	}
	return out, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error) {
	ingredient, err := s.ingredients.GetIngredient(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Ingredient not found.", "")
	}
	resp := presentIngredient(ingredient)
	return &resp, nil
}

// IngredientSeed is one entry of the reference data file.
type IngredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Load makes sure every seed exists and reports how many were new. Running
// it twice creates nothing the second time.
func (s *IngredientService) Load(ctx context.Context, seeds []IngredientSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		_, isNew, err := s.ingredients.EnsureIngredient(ctx, seed.Name, seed.MeasurementUnit)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func presentIngredient(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}
