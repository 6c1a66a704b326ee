package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/geoclaim/geoclaim/internal/buff"
	"github.com/geoclaim/geoclaim/internal/claim"
	"github.com/geoclaim/geoclaim/internal/database"
	"github.com/geoclaim/geoclaim/internal/handler"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/loot"
	"github.com/geoclaim/geoclaim/internal/metrics"
	"github.com/geoclaim/geoclaim/internal/player"
	"github.com/geoclaim/geoclaim/internal/spot"
	"github.com/geoclaim/geoclaim/internal/visit"
)

// Services bundles everything the HTTP layer exposes.
type Services struct {
	Player player.Service
	Spot   spot.Service
	Visit  visit.Service
	Claim  claim.Service
	Loot   loot.Service
	Buff   buff.Service
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, svc Services) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/player", func(r chi.Router) {
			r.Post("/register", handler.HandleRegisterPlayer(svc.Player))
			r.Get("/", handler.HandleGetPlayer(svc.Player))
			r.Get("/inventory", handler.HandleGetInventory(svc.Player))
			r.Get("/buffs", handler.HandleActiveBuffs(svc.Buff))
			r.Post("/item/use", handler.HandleUseItem(svc.Player))
		})

		r.Route("/spot", func(r chi.Router) {
			r.Post("/", handler.HandleCreateSpot(svc.Spot))
			r.Get("/", handler.HandleGetSpot(svc.Spot))
			r.Delete("/", handler.HandleDeleteSpot(svc.Spot))
			r.Get("/nearby", handler.HandleNearbySpots(svc.Spot))
		})

		r.Route("/visit", func(r chi.Router) {
			r.Post("/", handler.HandleLogVisit(svc.Visit))
			r.Get("/status", handler.HandleVisitStatus(svc.Visit))
			r.Get("/player", handler.HandlePlayerVisits(svc.Visit))
			r.Get("/spot", handler.HandleSpotVisits(svc.Visit))
		})

		r.Route("/claim", func(r chi.Router) {
			r.Get("/rankings", handler.HandleSpotRankings(svc.Claim))
			r.Get("/player", handler.HandlePlayerClaims(svc.Claim))
		})

		r.Route("/loot", func(r chi.Router) {
			r.Post("/spawn", handler.HandleSpawnLoot(svc.Loot))
			r.Post("/collect", handler.HandleCollectLoot(svc.Loot))
			r.Get("/", handler.HandleActiveLoot(svc.Loot))
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics endpoints are scraped constantly, skip them
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
