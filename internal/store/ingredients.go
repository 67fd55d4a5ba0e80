package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListIngredients returns ingredients whose name starts with namePrefix,
// compared case-insensitively. An empty prefix lists everything. SQLite
// only folds ASCII letters; PostgreSQL folds according to the database
// locale.
func (s *Store) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		pattern := likeEscaper.Replace(prefix) + "%"
		if s.db.Dialector.Name() == "postgres" {
			q = q.Where(`name ILIKE ? ESCAPE '\'`, pattern)
		} else {
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, strings.ToLower(pattern))
		}
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, translate(err)
	}
	return ingredients, nil
}

func (s *Store) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ingredient, nil
}

// GetIngredients loads the ingredients with the given ids. Unknown ids are
// silently absent from the result; callers compare lengths.
func (s *Store) GetIngredients(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, translate(err)
	}
	return ingredients, nil
}

// EnsureIngredient returns the ingredient with the given name and unit,
// creating it if needed. The boolean reports whether a row was created.
func (s *Store) EnsureIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)

	var existing models.Ingredient
	err := s.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, translate(err)
	}

	created := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(created).Error; err != nil {
		err = translate(err)
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent loader.
			if err := s.db.WithContext(ctx).
				Where("name = ? AND measurement_unit = ?", name, unit).
				First(&existing).Error; err != nil {
				return nil, false, translate(err)
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return created, true, nil
}
