// Package http provides the HTTP servers of the chatbot.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http/internalapi"
	v1 "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http/v1"
)

// ExternalServer is the public server: chat, sessions, history, health and metrics.
type ExternalServer struct{ *echo.Echo }

// InternalServer serves operator endpoints on a separate port.
type InternalServer struct{ *echo.Echo }

// NewExternalServer creates and configures the public HTTP server.
func NewExternalServer(svc v1.ChatService, gatherer prometheus.Gatherer, log *logger.Logger) *ExternalServer {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(svc, log).RegisterRoutes(e)
	e.GET("/metrics", metricsHandler(gatherer))

	return &ExternalServer{e}
}

// NewInternalServer creates and configures the operator HTTP server.
func NewInternalServer(svc internalapi.AuditService, gatherer prometheus.Gatherer) *InternalServer {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	internalapi.NewHandler(svc).RegisterRoutes(e)
	e.GET("/metrics", metricsHandler(gatherer))

	return &InternalServer{e}
}

func metricsHandler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
