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

	"github.com/gameswap/exchange/internal/database"
	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/handler"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/metrics"
	"github.com/gameswap/exchange/internal/trade"
	"github.com/gameswap/exchange/internal/user"
)

type Server struct {
	httpServer   *http.Server
	dbPool       database.Pool
	userService  user.Service
	tradeService trade.Service
}

// NewServer creates a new Server instance
func NewServer(port int, tokens TokenValidator, trustedProxies []string, dbPool database.Pool, userService user.Service, tradeService trade.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(tokens, trustedProxies, detector))
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
		// Account routes
		r.Post("/register", handler.HandleRegister(userService))
		r.Post("/login", handler.HandleLogin(userService))

		r.Route("/self", func(r chi.Router) {
			r.Get("/", handler.HandleGetSelf(userService))
			r.Put("/", handler.HandleUpdateSelf(userService))
			r.Put("/password", handler.HandleUpdatePassword(userService))
		})

		// Inventory routes
		r.Route("/games", func(r chi.Router) {
			r.Post("/", handler.HandleAddGame(userService))
			r.Get("/{name}", handler.HandleGetGame(userService))
			r.Put("/{name}", handler.HandleUpdateGame(userService))
			r.Delete("/{name}", handler.HandleDeleteGame(userService))
		})

		// Trade routes
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", handler.HandleCreateTrade(tradeService))
			r.Get("/", handler.HandleListTrades(tradeService))
			r.Get("/{id}", handler.HandleGetTrade(tradeService))
			r.Post("/{id}/accept", handler.HandleResolveTrade(tradeService, domain.TradeStatusAccepted))
			r.Post("/{id}/reject", handler.HandleResolveTrade(tradeService, domain.TradeStatusRejected))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:       dbPool,
		userService:  userService,
		tradeService: tradeService,
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

		// Skip logging for health check endpoints and metrics.
		// Use HasPrefix to catch variations (e.g. /healthz/).
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

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAuthorization) {
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
