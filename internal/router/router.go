package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Handlers bundles the route handlers.
type Handlers struct {
	Auth        *api.AuthHandler
	Users       *api.UserHandler
	Ingredients *api.IngredientHandler
	Recipes     *api.RecipeHandler
	ShortLinks  *api.ShortLinkHandler
}

// RegisterRoutes registers every API route on r. Paths carry no trailing
// slash; the server strips one from incoming requests. limiter may be nil.
func RegisterRoutes(r gin.IRouter, h Handlers, validator middleware.TokenValidator, limiter *middleware.RateLimiter) {
	required := middleware.RequireAuth(validator)
	optional := middleware.OptionalAuth(validator)
	limit := limiter.Middleware()

	r.GET("/s/:code", h.ShortLinks.Redirect)

	v1 := r.Group("/api")

	// Auth routes
	auth := v1.Group("/auth/token")
	{
		auth.POST("/login", limit, h.Auth.Login)
		auth.POST("/logout", required, h.Auth.Logout)
	}

	users := v1.Group("/users")
	{
		users.POST("", limit, h.Users.Register)
		users.GET("", optional, h.Users.ListUsers)
		users.GET("/me", required, h.Users.Me)
		users.PUT("/me/avatar", required, limit, h.Users.SetAvatar)
		users.DELETE("/me/avatar", required, h.Users.DeleteAvatar)
		users.POST("/set_password", required, limit, h.Users.SetPassword)
		users.GET("/subscriptions", required, h.Users.Subscriptions)
		users.GET("/:id", optional, h.Users.GetUser)
		users.POST("/:id/subscribe", required, limit, h.Users.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Users.Unsubscribe)
	}

	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("", h.Ingredients.ListIngredients)
		ingredients.GET("/:id", h.Ingredients.GetIngredient)
	}

	recipes := v1.Group("/recipes")
	{
		recipes.GET("", optional, h.Recipes.ListRecipes)
		recipes.POST("", required, limit, h.Recipes.CreateRecipe)
		recipes.GET("/download_shopping_cart", required, h.Recipes.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.Recipes.GetRecipe)
		recipes.PATCH("/:id", required, limit, h.Recipes.UpdateRecipe)
		recipes.DELETE("/:id", required, h.Recipes.DeleteRecipe)
		recipes.GET("/:id/get-link", h.Recipes.GetLink)
		recipes.POST("/:id/favorite", required, limit, h.Recipes.Favorite)
		recipes.DELETE("/:id/favorite", required, h.Recipes.Unfavorite)
		recipes.POST("/:id/shopping_cart", required, limit, h.Recipes.AddToCart)
		recipes.DELETE("/:id/shopping_cart", required, h.Recipes.RemoveFromCart)
	}
}
