package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"rentmimi/internal/config"
	"rentmimi/internal/domain"
	"rentmimi/internal/metrics"
	"rentmimi/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPServer exposes the booking lifecycle over a JSON HTTP API.
type HTTPServer struct {
	cfg      config.APIConfig
	booking  config.BookingConfig
	bookings domain.BookingService
	partners domain.PartnerService
	users    domain.UserService
	stories  domain.StoryService
	sessions domain.SessionRepository
	exporter PayoutExporter
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

// PayoutExporter writes the pending payout ledger to a file.
type PayoutExporter interface {
	PayoutLedger(lines []models.PayoutLine) (string, error)
}

func NewHTTPServer(
	cfg config.APIConfig,
	booking config.BookingConfig,
	bookings domain.BookingService,
	partners domain.PartnerService,
	users domain.UserService,
	stories domain.StoryService,
	sessions domain.SessionRepository,
	exporter PayoutExporter,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		booking:  booking,
		bookings: bookings,
		partners: partners,
		users:    users,
		stories:  stories,
		sessions: sessions,
		exporter: exporter,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/signup", srv.handleSignup)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingSubroutes)
	mux.HandleFunc("/api/v1/partners", srv.handlePartners)
	mux.HandleFunc("/api/v1/partners/", srv.handlePartnerSubroutes)
	mux.HandleFunc("/api/v1/payouts/pending", srv.handlePendingPayouts)
	mux.HandleFunc("/api/v1/payouts/export", srv.handlePayoutExport)
	mux.HandleFunc("/api/v1/stories", srv.handleStories)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(srv.sessionMiddleware(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the routed handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// actor resolves the acting user from the phone header. Unknown phones
// get a zero-value user with no roles, which every privileged operation
// rejects on its own.
func (s *HTTPServer) actor(r *http.Request) models.User {
	phone := strings.TrimSpace(r.Header.Get(s.auth.phoneHeader()))
	if phone == "" {
		return models.User{}
	}
	user, err := s.users.GetByPhone(r.Context(), phone)
	if err != nil || user == nil {
		return models.User{Phone: phone}
	}
	return *user
}

// sessionMiddleware tracks the acting phone's session and throttles
// mutations per phone. Session store failures degrade to allowing the
// request: availability of the API wins over strict limiting.
func (s *HTTPServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(r.Header.Get(s.auth.phoneHeader()))
		if s.sessions == nil || phone == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet {
			window := time.Duration(s.booking.RateLimitWindow) * time.Second
			allowed, err := s.sessions.CheckRateLimit(r.Context(), "mutations:"+phone, s.booking.RateLimitRequests, window)
			if err != nil {
				s.logger.Warn().Err(err).Msg("session rate limit check failed")
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}

		if err := s.sessions.SetSession(r.Context(), &models.Session{Phone: phone, SeenAt: time.Now()}); err != nil {
			s.logger.Warn().Err(err).Msg("session update failed")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HTTPAuth provides API-key auth and per-key rate limiting.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m}
}

func (a *HTTPAuth) phoneHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderPhone))
	if h == "" {
		h = "x-user-phone"
	}
	return h
}

func (a *HTTPAuth) keyHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if h == "" {
		h = "x-api-key"
	}
	return h
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = fmt.Errorf("permission denied")

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.keyHeader()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermissionHTTP(r)
	if required == "" {
		return nil
	}
	// If permissions list is empty, treat as allow-all.
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/payouts"):
		return "read:payouts"
	case strings.HasPrefix(path, "/api/v1/bookings"):
		if r.Method == http.MethodGet {
			return "read:bookings"
		}
		return "write:bookings"
	case strings.HasPrefix(path, "/api/v1/partners"):
		if r.Method == http.MethodGet {
			return "read:partners"
		}
		return "write:partners"
	}
	return ""
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.keyHeader())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
