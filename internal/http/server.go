package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"txdash/internal/cache"
	"txdash/internal/chart"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
	"txdash/internal/middleware/security"
	"txdash/internal/middleware/trace"
	appweb "txdash/web"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr          string
	Dataset       *core.Dataset
	Logger        *log.Logger
	SessionTTL    time.Duration
	SessionMax    int
	SessionLimit  ratelimit.Config
	SweepInterval time.Duration
	Chart         chart.Options
}

func (o *Options) applyDefaults() {
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 30 * time.Minute
	}
	if o.SessionMax <= 0 {
		o.SessionMax = 500
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.Chart.Width <= 0 || o.Chart.Height <= 0 {
		o.Chart = chart.DefaultOptions()
	}
}

type Server struct {
	http.Server
	templates    *template.Template
	dataset      *core.Dataset
	sessions     *sessionStore
	cacheManager *cache.Manager
	trace        *trace.Middleware
	logger       *log.Logger
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates, mounts the routes and starts the
// session sweeper. The dataset is shared read-only by every session.
func NewServer(opts Options) (*Server, error) {
	if opts.Dataset == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	opts.applyDefaults()
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		templates:    t,
		dataset:      opts.Dataset,
		sessions:     newSessionStore(opts.Dataset, opts.SessionMax, opts.SessionTTL, opts.SessionLimit, opts.Chart, opts.Logger),
		cacheManager: cache.NewManager(opts.Logger),
		trace:        trace.NewMiddleware(opts.Logger),
		logger:       logger,
		started:      time.Now(),
	}

	s.cacheManager.Register(s.sessions.cache)
	s.cacheManager.Register(s.sessions.limiter)
	s.cacheManager.StartCleanup(opts.SweepInterval)

	s.Handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(log.Middleware(s.logger))
	r.Use(s.trace.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssets(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Route("/ui", func(r chi.Router) {
		r.Get("/transactions", s.handleFilter)
		r.Post("/customers/{id}", s.handleCustomer)
		r.Post("/back", s.handleBack)
		r.Get("/chart.svg", s.handleChart)
	})
	return r
}

// Shutdown stops the session sweeper and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
