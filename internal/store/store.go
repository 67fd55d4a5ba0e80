// Package store is the relational entity store. Every write that the schema
// constrains reports ErrConflict on a uniqueness violation, and lookups of
// missing rows report ErrNotFound. Cascading deletes run as explicit
// transactions so the behaviour does not depend on foreign key support in the
// underlying engine.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Page selects a window of a list query. Zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

// RecipeFilter narrows ListRecipes. Nil fields are ignored.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
}

// Relation names one of the per-user saved recipe sets.
type Relation string

const (
	Favorites    Relation = "favorites"
	ShoppingCart Relation = "shopping_carts"
)

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type FollowStore interface {
	CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (*models.Follow, error)
	DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) error
	FollowedAuthors(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ListFollowedAuthors(ctx context.Context, userID uuid.UUID, page Page) ([]models.User, int64, error)
}

type IngredientStore interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	GetIngredients(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
	EnsureIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error)
}

type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe, items []models.RecipeIngredient) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe, items []models.RecipeIngredient) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ListRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error)
}

type RelationStore interface {
	AddRelation(ctx context.Context, rel Relation, userID, recipeID uuid.UUID) error
	RemoveRelation(ctx context.Context, rel Relation, userID, recipeID uuid.UUID) error
	RelatedRecipes(ctx context.Context, rel Relation, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CountRelation(ctx context.Context, rel Relation, userID uuid.UUID) (int64, error)
	ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error)
}

type ShortLinkStore interface {
	GetShortLink(ctx context.Context, recipeID uuid.UUID) (*models.RecipeShortLink, error)
	GetShortLinkByCode(ctx context.Context, code string) (*models.RecipeShortLink, error)
	CreateShortLink(ctx context.Context, link *models.RecipeShortLink) error
}

// Store implements every store interface on top of gorm.
type Store struct {
	db *gorm.DB
}

var (
	_ UserStore       = (*Store)(nil)
	_ FollowStore     = (*Store)(nil)
	_ IngredientStore = (*Store)(nil)
	_ RecipeStore     = (*Store)(nil)
	_ RelationStore   = (*Store)(nil)
	_ ShortLinkStore  = (*Store)(nil)
)

// New creates a Store. The gorm handle should be opened with TranslateError
// enabled so that driver errors map onto gorm's sentinel errors.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver and gorm errors onto the store's sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	// A foreign key violation means the referenced row is gone, for
	// example a recipe deleted while it was being favourited.
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return err
}
