package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

type RecipeHandler struct {
	recipes  service.IRecipeService
	shopping service.IShoppingListService
	links    service.IShortLinkService
}

func NewRecipeHandler(recipes service.IRecipeService, shopping service.IShoppingListService, links service.IShortLinkService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, shopping: shopping, links: links}
}

func truthy(v string) bool {
	return v == "1" || v == "true"
}

// ListRecipes supports ?author=<id>, ?is_favorited=1 and
// ?is_in_shopping_cart=1.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}

	query := service.RecipeQuery{
		IsFavorited:      truthy(c.Query("is_favorited")),
		IsInShoppingCart: truthy(c.Query("is_in_shopping_cart")),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, validation.Errors{"author": {"Select a valid choice."}})
			return
		}
		query.AuthorID = &authorID
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), middleware.UserID(c), query, p.window())
	if err != nil {
		renderError(c, err)
		return
	}
	renderPage(c, p, recipes, total)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink returns the recipe's short link, creating it on first request.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	code, err := h.links.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: absoluteURL(c, "/s/"+code+"/")})
}

func (h *RecipeHandler) addToSet(rel store.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		recipe, err := h.recipes.AddToSet(c.Request.Context(), rel, middleware.UserID(c), id)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

func (h *RecipeHandler) removeFromSet(rel store.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := h.recipes.RemoveFromSet(c.Request.Context(), rel, middleware.UserID(c), id); err != nil {
			renderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) Favorite(c *gin.Context)       { h.addToSet(store.Favorites)(c) }
func (h *RecipeHandler) Unfavorite(c *gin.Context)     { h.removeFromSet(store.Favorites)(c) }
func (h *RecipeHandler) AddToCart(c *gin.Context)      { h.addToSet(store.ShoppingCart)(c) }
func (h *RecipeHandler) RemoveFromCart(c *gin.Context) { h.removeFromSet(store.ShoppingCart)(c) }

// DownloadShoppingCart sends the aggregated shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	body, err := h.shopping.Export(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+service.ShoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
