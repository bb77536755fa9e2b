// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"booklib/config"
	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/router/handler"
	"booklib/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	FavoriteHandler *handler.FavoriteHandler
	BookHandler     *handler.BookHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Config          *config.Config
	Gatherer        prometheus.Gatherer `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	favoriteHandler *handler.FavoriteHandler
	bookHandler     *handler.BookHandler
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
	gatherer        prometheus.Gatherer
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		userHandler:     params.UserHandler,
		favoriteHandler: params.FavoriteHandler,
		bookHandler:     params.BookHandler,
		authMiddleware:  params.AuthMiddleware,
		config:          params.Config,
		gatherer:        params.Gatherer,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Prometheus scrape endpoint
	if r.config.Metrics != nil && r.config.Metrics.Enabled && r.gatherer != nil {
		e.GET(r.config.Metrics.Path, echo.WrapHandler(metrics.Handler(r.gatherer)))
	}

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh) // Refresh token travels in the Authorization header
	}

	// Account routes that require authentication
	usersGroup := e.Group("/users")
	usersGroup.Use(r.authMiddleware.Authenticate)
	{
		usersGroup.GET("/profile", r.userHandler.GetProfile)
		usersGroup.PATCH("/profile", r.userHandler.UpdateProfile)
		usersGroup.DELETE("", r.userHandler.DeleteAccount)

		usersGroup.GET("/favorites", r.favoriteHandler.List)
		usersGroup.POST("/favorites/:bookId", r.favoriteHandler.Add)
		usersGroup.DELETE("/favorites/:bookId", r.favoriteHandler.Remove)
	}

	// Catalogue routes
	booksGroup := e.Group("/books")
	booksGroup.Use(r.authMiddleware.Authenticate)
	{
		booksGroup.GET("", r.bookHandler.Search)
		booksGroup.GET("/:id", r.bookHandler.Get)
	}
}
