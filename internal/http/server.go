// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alquipc/internal/http/handlers"
	"alquipc/internal/http/middleware"
	"alquipc/internal/modules/pricing"
)

type Options struct {
	RateLimitPerMin int
	RateLimitBurst  int
	CORSOrigins     []string
}

type ServerDeps struct {
	Pricing *pricing.Service
	// Modes may be nil when no maps API key is configured.
	Modes   handlers.ModeResolver
	Logger  *zap.Logger
	Options Options
}

type Server struct {
	pricing *pricing.Service
	modes   handlers.ModeResolver
	logger  *zap.Logger
	opts    Options
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pricing: deps.Pricing,
		modes:   deps.Modes,
		logger:  logger,
		opts:    deps.Options,
	}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.Recovery(s.logger),
		cors.New(s.corsConfig()),
	)
	if s.opts.RateLimitPerMin > 0 && s.opts.RateLimitBurst > 0 {
		r.Use(middleware.RateLimit(s.opts.RateLimitPerMin, s.opts.RateLimitBurst, s.logger))
	}

	quoteHandler := handlers.NewQuoteHandler(s.pricing)
	tariffHandler := handlers.NewTariffHandler(s.pricing)
	modeHandler := handlers.NewModeHandler(s.modes)

	api := r.Group("/api")
	api.POST("/quotes", quoteHandler.Create)
	api.POST("/quotes/summary", quoteHandler.Summary)
	api.GET("/tariffs/:code", tariffHandler.Get)
	api.POST("/modes/resolve", modeHandler.Resolve)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Content-Type", middleware.HeaderRequestID}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	origins := s.opts.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
