package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bookxchange/marketplace/docs"
	"github.com/bookxchange/marketplace/internal/api/handler"
	"github.com/bookxchange/marketplace/internal/api/middleware"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Services are built by the
// caller so the router stays independent of the storage backend.
type Deps struct {
	Log zerolog.Logger

	Tokens   ports.TokenParser
	Accounts middleware.AccountResolver
	Now      func() time.Time

	Auth     ports.AuthService
	Books    ports.BookService
	Comments ports.CommentService
	Users    ports.UserService

	MaxUploadBytes int64
	CORSOrigins    []string
	ReadyChecks    map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics live in their own registry so several routers can coexist
	// in one process; /metrics serves it together with the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "bookexchange",
		Registerer: reg,
	}))
	e.Use(middleware.Authenticate(d.Tokens, d.Accounts, d.Log, d.Now))

	authenticated := middleware.RequireAuthenticated()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Books ---
	books := handler.NewBookHandler(d.Books, d.MaxUploadBytes)
	bodyLimit := echomiddleware.BodyLimit(uploadLimit(d.MaxUploadBytes))
	e.GET("/books", books.List)
	e.GET("/books/me", books.Mine, authenticated)
	e.GET("/books/:id", books.Get)
	e.POST("/books", books.Create, authenticated)
	e.PUT("/books/:id", books.Update, authenticated)
	e.DELETE("/books/:id", books.Delete, authenticated)
	e.POST("/books/:id/image", books.UploadImage, authenticated, bodyLimit)
	e.DELETE("/books/:id/image", books.DeleteImage, authenticated)

	// --- Comments ---
	comments := handler.NewCommentHandler(d.Comments)
	e.GET("/comments/book/:bookId", comments.ListForBook)
	e.POST("/comments/book/:bookId", comments.Create, authenticated)
	e.GET("/comments/me", comments.Mine, authenticated)
	e.PUT("/comments/:id", comments.Update, authenticated)
	e.DELETE("/comments/:id", comments.Delete, authenticated)

	// --- Users ---
	users := handler.NewUserHandler(d.Users)
	e.GET("/users/me", users.Me, authenticated)
	e.PUT("/users/me", users.UpdateMe, authenticated)

	// --- Admin ---
	admin := handler.NewAdminHandler(d.Users, d.Books, d.Comments)
	g := e.Group("/admin", middleware.RequireAdmin())
	g.GET("/users", admin.ListUsers)
	g.GET("/users/:id", admin.GetUser)
	g.PATCH("/users/:id/enabled", admin.SetEnabled)
	g.PATCH("/users/:id/toggle-enabled", admin.ToggleEnabled)
	g.PATCH("/users/:id/role", admin.SetRole)
	g.GET("/books", admin.ListBooks)
	g.GET("/comments", admin.ListComments)

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.ReadyChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// uploadLimit leaves room for multipart framing around the image itself.
func uploadLimit(maxBytes int64) string {
	if maxBytes <= 0 {
		return "10M"
	}
	return strconv.FormatInt(maxBytes/1024+64, 10) + "K"
}
