// Package handlers implements the HTTP endpoints of the quote service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/montroyal/quote-service/internal/pricing"
	"github.com/montroyal/quote-service/internal/session"
	"github.com/montroyal/quote-service/internal/storage"
	"github.com/montroyal/quote-service/internal/telemetry"
)

// SessionHeader carries the session ID between requests. Responses echo the
// ID of the session that served them; clients send it back to reuse state.
const SessionHeader = "X-Session-ID"

var (
	sessions *session.Manager
	engine   pricing.Engine
	archive  storage.Storage
	metrics  *telemetry.MetricsRecorder
	logger   *zerolog.Logger
)

// Deps holds the shared dependencies for all handlers.
type Deps struct {
	Sessions *session.Manager
	Engine   pricing.Engine
	Archive  storage.Storage
	Metrics  *telemetry.MetricsRecorder
	Logger   *zerolog.Logger
}

// Init wires the shared dependencies. Must be called before registering routes.
func Init(d Deps) {
	sessions = d.Sessions
	engine = d.Engine
	archive = d.Archive
	metrics = d.Metrics
	logger = d.Logger
	if metrics == nil {
		metrics = telemetry.NewMetricsRecorder()
	}
}

// currentSession resolves the request's session from the X-Session-ID header,
// creating one when the header is absent or stale, and echoes the ID back.
func currentSession(c *gin.Context) *session.Session {
	s := sessions.GetOrCreate(c.GetHeader(SessionHeader))
	c.Header(SessionHeader, s.ID)
	metrics.SetActiveSessions(sessions.Len())
	return s
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: sessions.Len(),
	})
}
