package web

import (
	"crypto/sha256"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"noticeboard/internal/board"
)

const (
	sessionName = "noticeboard_session"
	keyAdmin    = "admin"
	keyUsername = "username"
)

// newCookieStore derives a signing key and an encryption key from secret.
func newCookieStore(secret string, secure bool, maxAge int) (*sessions.CookieStore, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	store := sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	store.MaxAge(maxAge)
	return store, nil
}

// CookieSession is the HTTP SessionMarker: the marker lives in an
// encrypted, signed cookie.
type CookieSession struct {
	w http.ResponseWriter
	r *http.Request
	s *sessions.Session
}

func (c *CookieSession) Authenticated() (string, bool) {
	if marked, ok := c.s.Values[keyAdmin].(bool); !ok || !marked {
		return "", false
	}
	username, _ := c.s.Values[keyUsername].(string)
	return username, true
}

func (c *CookieSession) MarkAuthenticated(username string) error {
	c.s.Values[keyAdmin] = true
	c.s.Values[keyUsername] = username
	return c.s.Save(c.r, c.w)
}

// Clear drops the marker and expires the cookie.
func (c *CookieSession) Clear() error {
	delete(c.s.Values, keyAdmin)
	delete(c.s.Values, keyUsername)
	opts := *c.s.Options
	opts.MaxAge = -1
	c.s.Options = &opts
	return c.s.Save(c.r, c.w)
}

var _ board.SessionMarker = (*CookieSession)(nil)

// session returns the request's session. A cookie that fails to decode
// (tampered, or signed with a rotated secret) yields a fresh anonymous session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *CookieSession {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		s.logger.Warn("discarding unreadable session cookie", "error", err, "remote", r.RemoteAddr)
		sess, _ = s.cookies.New(r, sessionName)
	}
	return &CookieSession{w: w, r: r, s: sess}
}
