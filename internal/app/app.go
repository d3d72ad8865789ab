package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"noticeboard/internal/board"
	"noticeboard/internal/config"
	"noticeboard/internal/store"
	"noticeboard/internal/web"
)

// App is the application layer between the presentation surfaces and
// board.Service. It constructs all dependencies from config, exposes
// operations that accept raw string input, and owns the log file.
type App struct {
	cfg     *config.Config
	service *board.Service
	logger  *slogAdapter
	session *board.MemorySession
	op      *Operation
	logFile *os.File
}

// New creates a fully wired App from the given config and makes sure both
// collections exist. operation names the command being run (e.g. "AddNotice").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	op := NewOperation(operation)
	logger, logFile, err := newLogger(cfg.LogDir, op.ShortID())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := newApp(cfg, op, &slogAdapter{l: logger})
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

func newApp(cfg *config.Config, op *Operation, logger *slogAdapter) (*App, error) {
	noticeStore, err := store.NewRecordStoreFromConfig[board.Notice](cfg.Storage, store.NoticesFile)
	if err != nil {
		return nil, fmt.Errorf("creating notice store: %w", err)
	}
	adminStore, err := store.NewRecordStoreFromConfig[board.Administrator](cfg.Storage, store.AdminsFile)
	if err != nil {
		return nil, fmt.Errorf("creating administrator store: %w", err)
	}

	clock := board.RealClock{}
	notices := board.NewNoticeRepository(noticeStore, clock)
	admins := board.NewCredentialRepository(adminStore, board.BcryptHasher{Cost: cfg.Security.BcryptCost}, clock)
	gate := board.NewGate(admins, logger)
	svc := board.NewService(notices, admins, gate, logger)

	if err := svc.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing board: %w", err)
	}
	logger.Debug("operation started", "operation", op.Name)

	return &App{
		cfg:     cfg,
		service: svc,
		logger:  logger,
		session: board.NewMemorySession(),
		op:      op,
	}, nil
}

// Login authenticates the CLI session. Every mutating command calls it first.
func (a *App) Login(username, password string) error {
	if _, err := a.service.Login(a.session, username, password); err != nil {
		return a.fail(err)
	}
	return nil
}

// ListNotices returns all notices, newest first.
func (a *App) ListNotices() ([]board.Notice, error) {
	notices, err := a.service.ListNotices()
	return notices, a.fail(err)
}

// ShowNotice parses rawID and returns that notice.
func (a *App) ShowNotice(rawID string) (*board.Notice, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, a.fail(err)
	}
	notice, err := a.service.GetNotice(id)
	return notice, a.fail(err)
}

// AddNotice publishes a notice as the logged-in administrator.
func (a *App) AddNotice(title, content string) (*board.Notice, error) {
	c, err := a.authorize()
	if err != nil {
		return nil, err
	}
	notice, err := a.service.CreateNotice(c, title, content)
	return notice, a.fail(err)
}

// EditNotice replaces the title and content of the notice named by rawID.
func (a *App) EditNotice(rawID, title, content string) (*board.Notice, error) {
	c, err := a.authorize()
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, a.fail(err)
	}
	notice, err := a.service.UpdateNotice(c, id, title, content)
	return notice, a.fail(err)
}

// DeleteNotice removes the notice named by rawID.
func (a *App) DeleteNotice(rawID string) error {
	c, err := a.authorize()
	if err != nil {
		return err
	}
	id, err := parseID(rawID)
	if err != nil {
		return a.fail(err)
	}
	return a.fail(a.service.DeleteNotice(c, id))
}

// ListAdmins returns the administrator roster without password hashes.
func (a *App) ListAdmins() ([]board.AdminView, error) {
	c, err := a.authorize()
	if err != nil {
		return nil, err
	}
	admins, err := a.service.ListAdmins(c)
	return admins, a.fail(err)
}

// AddAdmin creates an administrator once password and confirm match.
func (a *App) AddAdmin(username, password, confirm string) (*board.AdminView, error) {
	c, err := a.authorize()
	if err != nil {
		return nil, err
	}
	if err := board.ConfirmPassword(password, confirm); err != nil {
		return nil, a.fail(err)
	}
	admin, err := a.service.CreateAdmin(c, username, password)
	return admin, a.fail(err)
}

// DeleteAdmin removes the administrator named by rawID.
func (a *App) DeleteAdmin(rawID string) error {
	c, err := a.authorize()
	if err != nil {
		return err
	}
	id, err := parseID(rawID)
	if err != nil {
		return a.fail(err)
	}
	return a.fail(a.service.DeleteAdmin(c, id))
}

// Handler returns the HTTP surface over the same service.
func (a *App) Handler() (http.Handler, error) {
	return web.NewServer(a.service, a.logger, web.Options{
		SessionSecret: a.cfg.Security.SessionSecret,
		SecureCookie:  a.cfg.Security.SecureCookie,
		SessionMaxAge: a.cfg.Security.SessionMaxAge,
	})
}

// Close records the outcome of the operation and closes the log file.
func (a *App) Close() error {
	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status)
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

func (a *App) authorize() (*board.Capability, error) {
	c, err := a.service.Authorize(a.session)
	if err != nil {
		return nil, a.fail(err)
	}
	return c, nil
}

// fail marks the operation as failed when err is non-nil and returns err.
func (a *App) fail(err error) error {
	if err != nil {
		a.op.Status = StatusError
	}
	return err
}

// parseID reads a record id as typed by the user.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", board.ErrValidation, raw)
	}
	return id, nil
}
