package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"txdash/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.trace.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
		"requests": map[string]int64{
			"total":         m.TotalRequests,
			"server_errors": m.ServerErrors,
		},
	})
}

// handleReady reports whether the dashboard can serve pages and where its
// data came from. A fallback dataset is still ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["dataset"] = map[string]interface{}{
		"origin":       s.dataset.Origin,
		"customers":    len(s.dataset.Customers),
		"transactions": len(s.dataset.Transactions),
	}

	limits := s.sessions.limiter.GetMetrics()
	checks["sessions"] = map[string]interface{}{
		"active":          s.sessions.size(),
		"limited_clients": limits.ClientCount,
		"denied":          limits.Denied,
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleIndex renders the full page. Every page load starts a new session,
// mirroring a fresh controller initialisation.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	sess, err := s.sessions.start(w, r, clientKey(r))
	if errors.Is(err, errSessionLimited) {
		TooManyRequestsError(60).Write(w)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to start session",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal)
		InternalServerError("Unable to load the dashboard").Write(w)
		return
	}

	sess.mu.Lock()
	data := sess.screen.snapshot(sess.ctrl)
	sess.mu.Unlock()

	body, err := s.execute("index.html", data)
	if err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			"template", "index.html")
		InternalServerError("Unable to render the dashboard").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleFilter applies the free-text filter.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	term := ParseSearchTerm(r)
	s.withSession(w, r, func(sess *session) (*HTMXResponseBuilder, error) {
		if err := sess.ctrl.OnFilterInput(term); err != nil {
			return nil, err
		}
		return NewHTMXResponse(), nil
	})
}

// handleCustomer focuses the view on the customer named in the route.
func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := ParseCustomerID(r)
	if err != nil {
		BadRequestError("Invalid customer").Write(w)
		return
	}
	s.withSession(w, r, func(sess *session) (*HTMXResponseBuilder, error) {
		if err := sess.ctrl.OnCustomerActivated(id); err != nil {
			return nil, err
		}
		resp := NewHTMXResponse().TriggerNavigation(sess.ctrl.Mode().Kind.String(), id, true)
		if _, ok := sess.ctrl.Dataset().Index().Lookup(id); !ok {
			resp.TriggerWarningNotification("Customer not found")
		}
		return resp, nil
	})
}

// handleBack returns the session to all transactions.
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (*HTMXResponseBuilder, error) {
		if err := sess.ctrl.OnBackActivated(); err != nil {
			return nil, err
		}
		return NewHTMXResponse().TriggerNavigation(sess.ctrl.Mode().Kind.String(), 0, false), nil
	})
}

// handleChart serves the session's live chart as SVG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.lookup(r)
	if err != nil {
		NotFoundError("No active session").Write(w)
		return
	}

	sess.mu.Lock()
	svg := sess.screen.canvas.SVG()
	sess.mu.Unlock()

	if svg == nil {
		NotFoundError("No chart to display").Write(w)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "image/svg+xml").
		Header("Cache-Control", "no-store").
		Body(svg).
		Write(w)
}

// withSession runs event against the caller's session under its lock and
// answers with the re-rendered dashboard partial. An expired session makes
// htmx reload the page, which starts a new one.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, event func(*session) (*HTMXResponseBuilder, error)) {
	logger := log.FromContext(r.Context())

	sess, err := s.sessions.lookup(r)
	if err != nil {
		if isHTMX(r) {
			NewHTMXResponse().Refresh().Write(w)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.mu.Lock()
	resp, err := event(sess)
	data := sess.screen.snapshot(sess.ctrl)
	sess.mu.Unlock()

	if err != nil {
		sess.logger.ErrorContext(r.Context(), "View event failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldPath, r.URL.Path)
		InternalServerError("Unable to update the dashboard").Write(w)
		return
	}

	body, err := s.execute("dashboard", data)
	if err != nil {
		logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			log.FieldError, err,
			"template", "dashboard")
		InternalServerError("Unable to render the dashboard").Write(w)
		return
	}
	resp.BodyHTML(body).Write(w)
}

func (s *Server) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientKey identifies the caller for session rate limiting. RealIP has
// already replaced RemoteAddr when proxy headers are present.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
