package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/placement-portal/internal/config"
	"github.com/jonathan/placement-portal/internal/db"
	"github.com/jonathan/placement-portal/internal/linkedin"
	"github.com/jonathan/placement-portal/internal/server/middleware"
	"github.com/jonathan/placement-portal/internal/server/ratelimit"
	"github.com/jonathan/placement-portal/internal/types"
	"golang.org/x/sync/singleflight"
)

// Scraper fetches a company profile by LinkedIn company identifier.
type Scraper interface {
	Scrape(ctx context.Context, profileID string) (*types.ScrapedProfile, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       db.Store
	scraper     Scraper
	scrapes     singleflight.Group
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	verbose     bool
}

// Config holds server configuration
type Config struct {
	Port            int
	DatabaseURL     string
	UseBrowser      bool
	ProfileCacheTTL time.Duration
	Verbose         bool
	// JWT enables bearer-token auth. When nil, New reads it from the
	// environment if JWT_SECRET is set.
	JWT *config.JWTConfig
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
}

// New opens the company store and builds a server that scrapes LinkedIn directly.
func New(cfg Config) (*Server, error) {
	store, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.JWT == nil && config.JWTEnabled() {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		cfg.JWT = jwtConfig
	}

	scraperCfg := linkedin.DefaultScraperConfig()
	scraperCfg.UseBrowser = cfg.UseBrowser
	scraperCfg.Cache = store
	scraperCfg.CacheTTL = cfg.ProfileCacheTTL
	scraperCfg.Verbose = cfg.Verbose

	return NewWithStore(cfg, store, linkedin.NewScraper(scraperCfg)), nil
}

// NewWithStore builds a server around an already opened store and scraper.
func NewWithStore(cfg Config, store db.Store, scraper Scraper) *Server {
	s := &Server{
		store:   store,
		scraper: scraper,
		verbose: cfg.Verbose,
	}

	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateCfg)

	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+ratelimit.HealthPath, s.handleHealth)
	mux.HandleFunc("GET "+ratelimit.ScrapePath, s.handleScrapeCompanyProfile)
	mux.HandleFunc("POST "+ratelimit.AddCompanyPath, s.handleAddCompany)
	mux.HandleFunc("GET "+ratelimit.CompaniesPath, s.handleListCompanies)
	mux.HandleFunc("GET "+ratelimit.CompaniesPath+"/{id}", s.handleGetCompany)

	var handler http.Handler = mux
	if s.jwtService != nil {
		handler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), ratelimit.HealthPath)(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(handler))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // Browser-rendered scrapes can take most of a minute
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// JWTService returns the token service, or nil when auth is disabled.
func (s *Server) JWTService() *JWTService {
	return s.jwtService
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close stops the rate limiter cleanup goroutine and closes the store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if s.verbose {
			log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and body. Validation failures carry the
// field error list under "errors"; everything else a single "error" string.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s: %v", r.Method, r.URL.Path, err)
	}

	var invalid *ErrValidation
	if errors.As(err, &invalid) {
		s.jsonResponse(w, status, map[string]any{"errors": invalid.Errors})
		return
	}
	s.errorResponse(w, status, publicMessage(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		// Round up so clients never retry early
		retryAfter := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}

	log.Printf("[rate-limit] limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
