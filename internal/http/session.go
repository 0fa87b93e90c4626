package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"txdash/internal/cache"
	"txdash/internal/chart"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
	"txdash/internal/view"
)

// SessionCookie names the cookie carrying the dashboard session id.
const SessionCookie = "txdash_session"

var (
	errSessionLimited = errors.New("session creation rate limited")
	errNoSession      = errors.New("no active session")
)

// session pairs one view controller with the screen it draws into. mu
// serialises every event, so a controller only ever sees one at a time.
type session struct {
	mu     sync.Mutex
	id     string
	ctrl   *view.Controller
	screen *screen
	logger *log.Logger
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Close()
	s.logger.Debug("Session closed")
}

type sessionStore struct {
	cache     cache.Cache[*session]
	limiter   *ratelimit.Limiter
	dataset   *core.Dataset
	chartOpts chart.Options
	logger    *log.Logger
}

func newSessionStore(ds *core.Dataset, maxSize int, ttl time.Duration, limit ratelimit.Config, opts chart.Options, logger *log.Logger) *sessionStore {
	sessions := cache.NewLRUCache[*session](maxSize, ttl)
	sessions.OnEvict(func(_ string, s *session) { s.close() })
	return &sessionStore{
		cache:     sessions,
		limiter:   ratelimit.NewLimiter(limit),
		dataset:   ds,
		chartOpts: opts,
		logger:    logger.WithComponent(log.ComponentSession),
	}
}

// start opens a fresh session for a page load. Any session the client
// already holds is closed first. clientKey is the rate-limit key.
func (st *sessionStore) start(w http.ResponseWriter, r *http.Request, clientKey string) (*session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		st.cache.Delete(c.Value)
	}

	if !st.limiter.Allow(clientKey) {
		st.logger.WarnContext(r.Context(), "Session creation rate limited",
			log.FieldClientIP, clientKey,
			log.FieldErrorType, log.ErrorTypeRateLimit)
		return nil, errSessionLimited
	}

	id := uuid.NewString()
	scr := newScreen(st.chartOpts)
	logger := st.logger.With(log.FieldSessionID, id)
	ctrl, err := view.NewController(st.dataset, scr.surfaces(), logger)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}
	if err := ctrl.Init(); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("initial render: %w", err)
	}

	s := &session{id: id, ctrl: ctrl, screen: scr, logger: logger}
	st.cache.Set(id, s)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	logger.InfoContext(r.Context(), "Session started", log.FieldSessions, st.cache.Size())
	return s, nil
}

// lookup returns the live session named by the request cookie.
func (st *sessionStore) lookup(r *http.Request) (*session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, errNoSession
	}
	s, ok := st.cache.Get(c.Value)
	if !ok {
		return nil, errNoSession
	}
	return s, nil
}

func (st *sessionStore) size() int { return st.cache.Size() }
