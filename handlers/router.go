package handlers

import (
	"fmt"

	"rooftop-vision/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth  = "/api/v1/health"
	EndPointAnalyze = "/api/v1/analyze"
	EndPointMetrics = "/metrics"
)

// NewRouter builds the service router. Only peers in trustedProxies may set
// X-Forwarded-For; with none, the client IP is the connection's remote
// address, which is what the rate limiter keys on.
func NewRouter(h *Handlers, trustedProxies []string, rateLimitPerMinute int) (*gin.Engine, error) {
	router := gin.Default()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(middleware.RequestID())

	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))
	router.GET(EndPointHealth, h.HealthCheck)
	router.POST(EndPointAnalyze, middleware.RateLimit(rateLimitPerMinute), h.AnalyzeRooftop)

	return router, nil
}
