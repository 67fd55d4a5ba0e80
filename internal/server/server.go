package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server
}

// New wires stores, services and handlers into a gin engine. redisClient
// may be nil, which disables rate limiting and token revocation.
func New(cfg *config.Config, st *store.Store, redisClient *redis.Client, media storage.Storage) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	var revoker service.TokenRevoker
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		revoker = service.NewRedisRevoker(redisClient)
		limiter = middleware.NewWriteRateLimiter(redisClient, cfg.RateLimitPerHour)
	}

	authService := service.NewAuthService(st, revoker, cfg.JWTSecret, cfg.JWTTTL)
	userService := service.NewUserService(st, st, st, media)
	recipeService := service.NewRecipeService(st, st, st, st, media)
	links := service.NewShortLinkService(st, st)

	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.Use(
		middleware.RequestLogger(),
		middleware.Metrics(),
		gin.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
	)

	engine.GET("/health", api.NewHealthHandler(st).HealthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := media.(*storage.LocalStore); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		engine.Static(cfg.MediaURL, local.Root)
	}

	router.RegisterRoutes(engine, router.Handlers{
		Auth:        api.NewAuthHandler(authService),
		Users:       api.NewUserHandler(authService, userService),
		Ingredients: api.NewIngredientHandler(service.NewIngredientService(st)),
		Recipes:     api.NewRecipeHandler(recipeService, service.NewShoppingListService(st), links),
		ShortLinks:  api.NewShortLinkHandler(links),
	}, authService, limiter)

	return &Server{cfg: cfg, engine: engine}
}

// Handler is the full request pipeline: JSON error rendering, trailing
// slash normalisation and the gin engine.
func (s *Server) Handler() http.Handler {
	return middleware.ErrorHandler(trimTrailingSlash(s.engine))
}

// trimTrailingSlash lets "/api/users/" and "/api/users" reach the same
// route.
func trimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			if r.URL.RawPath != "" {
				r.URL.RawPath = strings.TrimRight(r.URL.RawPath, "/")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Info().Str("addr", s.http.Addr).Msg("server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
