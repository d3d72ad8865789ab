package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"noticeboard/internal/board"
)

// Options configures the session cookie.
type Options struct {
	SessionSecret string
	SecureCookie  bool
	SessionMaxAge int // seconds
}

// Server is the JSON HTTP surface of the board.
type Server struct {
	svc     *board.Service
	logger  board.Logger
	cookies *sessions.CookieStore
	router  chi.Router
}

// NewServer builds the router over svc.
func NewServer(svc *board.Service, logger board.Logger, opts Options) (*Server, error) {
	cookies, err := newCookieStore(opts.SessionSecret, opts.SecureCookie, opts.SessionMaxAge)
	if err != nil {
		return nil, err
	}
	s := &Server{svc: svc, logger: logger, cookies: cookies}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/notices", s.listNotices)
	r.Get("/notices/{id}", s.getNotice)

	r.Post("/login", s.login)
	r.Post("/logout", s.logout)
	r.Get("/session", s.currentSession)

	r.Group(func(g chi.Router) {
		g.Use(s.requireAdmin)

		g.Post("/notices", s.createNotice)
		g.Post("/notices/{id}", s.updateNotice)
		g.Post("/notices/{id}/delete", s.deleteNotice)

		g.Get("/admins", s.listAdmins)
		g.Post("/admins", s.createAdmin)
		g.Post("/admins/{id}/delete", s.deleteAdmin)
	})

	return r
}

type ctxKey int

const capabilityKey ctxKey = iota

// requireAdmin admits only requests whose session passes the gate and
// hands the capability to the handler through the request context.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := s.svc.Authorize(s.session(w, r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), capabilityKey, c)))
	})
}

func capabilityFrom(r *http.Request) *board.Capability {
	c, _ := r.Context().Value(capabilityKey).(*board.Capability)
	return c
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: ErrorMessage(err)})
}
