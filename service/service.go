package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/auth"
	"github.com/rsquare-id/rsquare/internal/handlers"
	"github.com/rsquare-id/rsquare/internal/metrics"
	"github.com/rsquare-id/rsquare/storage"
)

type Service struct {
	store   storage.Store
	config  *Config
	metrics *metrics.Metrics

	sessions *auth.Sessions
	products *handlers.ProductsHandler
	pages    *handlers.PagesHandler
	upload   *handlers.UploadHandler
	assets   *handlers.AssetsHandler
	admin    *handlers.AdminHandler
}

func New(store storage.Store, config *Config) (*Service, error) {
	sessions := auth.NewSessions(config.Session.Secret, 24*time.Hour)

	passwordHash, err := auth.HashPassword(config.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	secureCookie := config.Environment == "production"

	return &Service{
		store:    store,
		config:   config,
		metrics:  metrics.New("rsquare"),
		sessions: sessions,
		products: handlers.NewProductsHandler(store),
		pages:    handlers.NewPagesHandler(store),
		upload:   handlers.NewUploadHandler(config.Upload.Dir),
		assets:   handlers.NewAssetsHandler(store, config.PublicDir, config.Upload.Dir),
		admin:    handlers.NewAdminHandler(sessions, config.Admin.Username, passwordHash, secureCookie),
	}, nil
}

func (s *Service) RegisterRoutes(e *echo.Echo) error {
	renderer, err := handlers.NewRenderer(s.config.TemplatesDir)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	e.Renderer = renderer

	e.Use(s.metrics.Middleware())
	e.Use(auth.Middleware(s.sessions))

	// Static files - no auth middleware
	e.Static("/public", s.config.PublicDir)
	e.Static("/uploads", s.config.Upload.Dir)

	// Storefront pages
	e.GET("/", s.pages.Home)
	e.GET("/templates", s.pages.Templates)
	e.GET("/templates/:slug", s.pages.Detail)
	e.GET("/preview/:slug", s.pages.Preview)
	e.GET("/instructions/:slug", s.pages.Instructions)
	e.GET("/tentang-kami", s.pages.Static("tentang_kami", "Tentang Kami"))
	e.GET("/kontak", s.pages.Static("kontak", "Kontak"))
	e.GET("/syarat-ketentuan", s.pages.Static("syarat_ketentuan", "Syarat & Ketentuan"))
	e.GET("/kebijakan-privasi", s.pages.Static("kebijakan_privasi", "Kebijakan Privasi"))

	// Public catalog API
	api := e.Group("/api")
	api.GET("/products", s.products.List)
	api.GET("/products/featured", s.products.ListFeatured)
	api.GET("/products/free", s.products.ListFree)
	api.GET("/products/:id", s.products.Get)

	// Admin-gated catalog API
	adminAPI := api.Group("", auth.RequireAdmin())
	adminAPI.POST("/products", s.products.Save)
	adminAPI.DELETE("/products/:id", s.products.Delete)
	adminAPI.POST("/products/featured", s.products.SetFeatured)
	adminAPI.PATCH("/products/:id/active", s.products.SetActive)
	adminAPI.PATCH("/products/reorder", s.products.Reorder)
	adminAPI.POST("/upload", s.upload.Upload)
	adminAPI.POST("/products/:id/og-image", s.assets.GenerateOGImage)
	adminAPI.POST("/products/:id/guide-pdf", s.assets.GenerateGuide)

	// Admin pages
	e.GET("/admin/login", s.admin.LoginPage)
	e.POST("/admin/login", s.admin.Login)
	e.POST("/admin/logout", s.admin.Logout)
	e.GET("/admin", s.admin.Panel, auth.RequireAdmin())

	// Operational endpoints
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return nil
}
