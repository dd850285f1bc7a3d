// Package httpapi exposes the storequery engine over HTTP.
//
// Every data route requires the X-Tenant-ID header; the engine has no
// cross-tenant surface, so a request without one is rejected before any
// handler runs.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/oakmere/storequery/internal/analytics"
	"github.com/oakmere/storequery/internal/catalog"
	"github.com/oakmere/storequery/internal/config"
	"github.com/oakmere/storequery/internal/conversation"
	"github.com/oakmere/storequery/internal/order"
	"github.com/oakmere/storequery/internal/tenant"
)

// tenantHeader carries the caller's tenant on every data request.
const tenantHeader = "X-Tenant-ID"

// Services bundles the engine services the HTTP layer fronts.
type Services struct {
	Catalog      *catalog.Service
	Conversation *conversation.Service
	Order        *order.Service
	Analytics    *analytics.Service
}

// Server provides the HTTP API for storequery.
type Server struct {
	echo     *echo.Echo
	services Services
	logger   *zap.Logger
	config   *config.Config
}

// NewServer creates an HTTP server wired to the given services.
func NewServer(services Services, logger *zap.Logger, cfg *config.Config) (*Server, error) {
	if services.Catalog == nil || services.Conversation == nil ||
		services.Order == nil || services.Analytics == nil {
		return nil, fmt.Errorf("all services are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(NewMetrics(logger).Middleware())
	if cfg.RateLimit.Enabled {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(cfg.RateLimit.RPS),
				Burst: cfg.RateLimit.Burst,
			},
		)))
	}
	e.Use(requestTimeout(cfg.Query.RequestTimeout))

	s := &Server{
		echo:     e,
		services: services,
		logger:   logger.Named("http"),
		config:   cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1", requireTenant)
	v1.GET("/products/search", s.handleProductSearch)
	v1.GET("/conversations/search", s.handleConversationSearch)
	v1.GET("/orders/search", s.handleOrderSearch)
	v1.GET("/orders/:code", s.handleOrderByCode)
	v1.GET("/analytics/event-counts", s.handleEventCounts)
	v1.GET("/analytics/daily-volume", s.handleDailyVolume)
	v1.GET("/analytics/top-products", s.handleTopProducts)
	v1.GET("/analytics/engagement", s.handleEngagement)
	v1.GET("/analytics/summary", s.handleSummary)
}

// requestLogger logs one line per request with the request id attached.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}

// requestTimeout bounds every handler with a deadline so one slow query
// cannot pin a connection indefinitely.
func requestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// requireTenant extracts the tenant id header and stashes it on the request
// context. Requests without one never reach a handler.
func requireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := tenant.ID(c.Request().Header.Get(tenantHeader))
		if err := id.Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("%s header is required", tenantHeader))
		}
		ctx := tenant.WithTenant(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
