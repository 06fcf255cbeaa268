package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"weekspend/internal/log"
	"weekspend/internal/services"
	appweb "weekspend/web"
)

const (
	// requestTimeout bounds a single handler's ledger work.
	requestTimeout = 10 * time.Second
	// maxBodyBytes caps JSON and form bodies.
	maxBodyBytes = 64 << 10
)

// ReadyFunc reports whether the backing ledger is reachable.
type ReadyFunc func(ctx context.Context) error

// Server is the weekly report web server.
type Server struct {
	http.Server

	templates *template.Template
	reports   *services.ReportService
	expenses  *services.ExpenseService
	ready     ReadyFunc

	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time

	shutdownOnce sync.Once
}

// Options tunes optional server behavior.
type Options struct {
	Logger *log.Logger
	// Ready defaults to always ready.
	Ready ReadyFunc
	// PostLimit is the number of POST requests allowed per client per minute;
	// zero uses the default of 60.
	PostLimit int
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, reports *services.ReportService, expenses *services.ExpenseService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Level: log.ParseLevel("info"), Component: log.ComponentHTTP})
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           log.Middleware(logger)(mux),
			ReadHeaderTimeout: 5 * time.Second,
		},
		reports:     reports,
		expenses:    expenses,
		ready:       opts.Ready,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.PostLimit),
		metrics:     &securityMetrics{},
		started:     time.Now(),
	}

	t, err := template.New("").ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/ui/weekly", s.withSecurityHeaders(allow(s.handleWeeklyPartial, http.MethodGet)))
	mux.HandleFunc("/ui/weekly/toggle", s.withSecurityHeaders(allow(s.handleToggleCategory, http.MethodPost)))

	mux.HandleFunc("/api/weekly", s.withSecurityHeaders(allow(s.handleWeeklyJSON, http.MethodGet)))
	mux.HandleFunc("/api/expenses", s.withSecurityHeaders(allow(s.handleCreateExpense, http.MethodPost)))

	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// allow rejects methods other than the listed ones with 405 and an Allow header.
func allow(next http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := RequireMethod(r, methods...); resp != nil {
			resp.Write(w)
			return
		}
		next(w, r)
	}
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		if detectSuspiciousRequest(r, s.metrics) {
			reqLogger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			NewHTMXResponse().
				Status(http.StatusTooManyRequests).
				Header("Retry-After", "60").
				TriggerNotification(NotificationWarning, "Too many requests, slow down", 5000).
				Header("Content-Type", "text/plain; charset=utf-8").
				BodyString("Rate limit exceeded. Please try again later.\n").
				Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.NewStructuredLogger(reqLogger).LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
