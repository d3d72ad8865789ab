package board

import (
	"errors"
	"fmt"
)

// Service is the entry point for presentation layers. Reads are public;
// every mutation takes the Capability issued by the gate and is refused
// without one.
type Service struct {
	notices *NoticeRepository
	admins  *CredentialRepository
	gate    *Gate
	logger  Logger
}

// NewService creates a Service over the given repositories.
func NewService(notices *NoticeRepository, admins *CredentialRepository, gate *Gate, logger Logger) *Service {
	return &Service{
		notices: notices,
		admins:  admins,
		gate:    gate,
		logger:  logger,
	}
}

// Initialize creates both collections if they do not exist yet, seeding
// the bootstrap administrator on first run. Safe to call on every start.
func (s *Service) Initialize() error {
	if err := s.notices.Initialize(); err != nil {
		s.logger.Error("initializing notices failed", "error", err)
		return err
	}
	seeded, err := s.admins.Initialize()
	if err != nil {
		s.logger.Error("initializing administrators failed", "error", err)
		return err
	}
	if seeded {
		s.logger.Warn("bootstrap administrator created, change the default credentials",
			"username", DefaultAdminUsername)
	}
	return nil
}

// Login authenticates sess. See Gate.Login.
func (s *Service) Login(sess SessionMarker, username, password string) (*Capability, error) {
	return s.gate.Login(sess, username, password)
}

// Logout clears sess. See Gate.Logout.
func (s *Service) Logout(sess SessionMarker) error {
	return s.gate.Logout(sess)
}

// Authorize returns the capability held by sess. See Gate.RequireAuthenticated.
func (s *Service) Authorize(sess SessionMarker) (*Capability, error) {
	capability, err := s.gate.RequireAuthenticated(sess)
	if err != nil {
		if !errors.Is(err, ErrAuthorization) {
			s.report("authorize", err)
		}
		return nil, err
	}
	return capability, nil
}

// ListNotices returns all notices, newest first.
func (s *Service) ListNotices() ([]Notice, error) {
	notices, err := s.notices.ListAll()
	if err != nil {
		s.report("list notices", err)
		return nil, err
	}
	return notices, nil
}

// GetNotice returns a single notice.
func (s *Service) GetNotice(id int64) (*Notice, error) {
	notice, err := s.notices.GetByID(id)
	if err != nil {
		s.report("get notice", err, "id", id)
		return nil, err
	}
	return notice, nil
}

func (s *Service) CreateNotice(c *Capability, title, content string) (*Notice, error) {
	if err := requireCapability(c); err != nil {
		return nil, err
	}
	notice, err := s.notices.Create(title, content)
	if err != nil {
		s.report("create notice", err, "by", c.Username())
		return nil, err
	}
	s.logger.Info("notice created", "id", notice.ID, "by", c.Username())
	return notice, nil
}

func (s *Service) UpdateNotice(c *Capability, id int64, title, content string) (*Notice, error) {
	if err := requireCapability(c); err != nil {
		return nil, err
	}
	notice, err := s.notices.Update(id, title, content)
	if err != nil {
		s.report("update notice", err, "id", id, "by", c.Username())
		return nil, err
	}
	s.logger.Info("notice updated", "id", id, "by", c.Username())
	return notice, nil
}

func (s *Service) DeleteNotice(c *Capability, id int64) error {
	if err := requireCapability(c); err != nil {
		return err
	}
	if err := s.notices.Delete(id); err != nil {
		s.report("delete notice", err, "id", id, "by", c.Username())
		return err
	}
	s.logger.Info("notice deleted", "id", id, "by", c.Username())
	return nil
}

// ListAdmins returns the roster without password hashes.
func (s *Service) ListAdmins(c *Capability) ([]AdminView, error) {
	if err := requireCapability(c); err != nil {
		return nil, err
	}
	admins, err := s.admins.ListAll()
	if err != nil {
		s.report("list administrators", err)
		return nil, err
	}
	return admins, nil
}

func (s *Service) CreateAdmin(c *Capability, username, password string) (*AdminView, error) {
	if err := requireCapability(c); err != nil {
		return nil, err
	}
	admin, err := s.admins.Create(username, password)
	if err != nil {
		s.report("create administrator", err, "username", username, "by", c.Username())
		return nil, err
	}
	s.logger.Info("administrator created", "id", admin.ID, "username", admin.Username, "by", c.Username())
	return admin, nil
}

func (s *Service) DeleteAdmin(c *Capability, id int64) error {
	if err := requireCapability(c); err != nil {
		return err
	}
	if err := s.admins.Delete(id); err != nil {
		s.report("delete administrator", err, "id", id, "by", c.Username())
		return err
	}
	s.logger.Info("administrator deleted", "id", id, "by", c.Username())
	return nil
}

// report logs a failed operation: refusals at warn, infrastructure
// failures at error so they reach the operator.
func (s *Service) report(op string, err error, args ...any) {
	args = append(args, "error", err)
	if IsUserError(err) {
		s.logger.Warn(op+" refused", args...)
		return
	}
	s.logger.Error(op+" failed", args...)
}

func requireCapability(c *Capability) error {
	if c == nil {
		return fmt.Errorf("%w: no capability", ErrAuthorization)
	}
	return nil
}
