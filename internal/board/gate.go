package board

import "fmt"

// Credentials is what the gate needs from the administrator roster.
type Credentials interface {
	Verify(username, password string) (bool, error)
	Exists(username string) (bool, error)
}

// Capability proves that the holder passed the gate. Only the gate can
// create one, so a non-nil Capability is always genuine.
type Capability struct {
	username string
}

// Username is the administrator the capability was issued to.
func (c *Capability) Username() string { return c.username }

// Gate verifies credentials and moves a session between the anonymous and
// authenticated states.
type Gate struct {
	creds  Credentials
	logger Logger
}

// NewGate creates a gate over creds.
func NewGate(creds Credentials, logger Logger) *Gate {
	return &Gate{creds: creds, logger: logger}
}

// Login marks sess as authenticated when the credentials are valid. Any
// credential mismatch yields ErrAuthentication and leaves sess untouched.
func (g *Gate) Login(sess SessionMarker, username, password string) (*Capability, error) {
	ok, err := g.creds.Verify(username, password)
	if err != nil {
		g.logger.Error("credential check failed", "error", err)
		return nil, fmt.Errorf("verifying credentials: %w", err)
	}
	if !ok {
		g.logger.Warn("login failed", "username", username)
		return nil, ErrAuthentication
	}
	if err := sess.MarkAuthenticated(username); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	g.logger.Info("login", "username", username)
	return &Capability{username: username}, nil
}

// Logout returns sess to the anonymous state.
func (g *Gate) Logout(sess SessionMarker) error {
	if sess == nil {
		return nil
	}
	if username, ok := sess.Authenticated(); ok {
		g.logger.Info("logout", "username", username)
	}
	if err := sess.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// RequireAuthenticated returns a capability for an authenticated session.
// A missing session, a missing marker and a marker naming an administrator
// who has since been removed are all refused with ErrAuthorization.
func (g *Gate) RequireAuthenticated(sess SessionMarker) (*Capability, error) {
	if sess == nil {
		return nil, ErrAuthorization
	}
	username, ok := sess.Authenticated()
	if !ok || username == "" {
		return nil, ErrAuthorization
	}
	exists, err := g.creds.Exists(username)
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if !exists {
		g.logger.Warn("session refers to removed administrator", "username", username)
		if err := sess.Clear(); err != nil {
			g.logger.Warn("clearing stale session failed", "error", err)
		}
		return nil, ErrAuthorization
	}
	return &Capability{username: username}, nil
}
