package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/store"
)

// ShoppingListFilename is the attachment name of an exported list.
const ShoppingListFilename = "shopping_list.txt"

// ShoppingListService aggregates a user's cart into a plain text list.
type ShoppingListService struct {
	relations store.RelationStore
	now       func() time.Time
}

func NewShoppingListService(relations store.RelationStore) *ShoppingListService {
	return &ShoppingListService{relations: relations, now: time.Now}
}

// WithClock replaces the clock used for the header date.
func (s *ShoppingListService) WithClock(now func() time.Time) *ShoppingListService {
	s.now = now
	return s
}

// Export renders the shopping list of userID. An empty cart is ErrNotFound.
func (s *ShoppingListService) Export(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	items, err := s.relations.ShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, newError(ErrNotFound, "The shopping list is empty.")
	}
	metrics.ShoppingListExports.Inc()
	return []byte(RenderShoppingList(items, s.now())), nil
}

// RenderShoppingList formats aggregated items, one "name - total unit" line
// each, between a dated header and a footer.
func RenderShoppingList(items []store.ShoppingListItem, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list. Date: %s\n\n", date.Format("02-01-2006"))
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d %s\n", item.Name, item.Total, item.MeasurementUnit)
	}
	fmt.Fprintf(&b, "\nFoodgram shopping list (%d)", date.Year())
	return b.String()
}
