package driver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"github.com/mpetrenko/webharness/internal/settings"
)

// Manager hands out at most one live WebDriver session per owner key. Owners
// are caller-chosen identities, typically test names or worker IDs.
// Acquisitions by distinct owners proceed independently; sessions are dialed
// outside the registry lock.
type Manager struct {
	settings settings.Settings
	executor ExecutorFunc
	connect  Connector
	logger   *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// ManagerOption configures Manager behaviour.
type ManagerOption func(*Manager)

// WithConnector overrides how sessions are dialed, primarily for tests.
func WithConnector(connect Connector) ManagerOption {
	return func(m *Manager) {
		m.connect = connect
	}
}

// NewManager constructs a Manager that dials sessions with selenium.NewRemote.
func NewManager(st settings.Settings, executor ExecutorFunc, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		settings: st,
		executor: executor,
		connect:  selenium.NewRemote,
		logger:   logger,
		handles:  make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the live handle for owner, creating one if absent. Creation
// matches the resolved browser name case-insensitively against the supported
// engines, dials a session, applies the implicit-wait and page-load timeouts,
// and maximizes the window. Launch failures are returned to the caller; there
// is no retry.
func (m *Manager) Acquire(owner string) (*Handle, error) {
	m.mu.Lock()
	if h, ok := m.handles[owner]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	engine, err := MatchEngine(m.settings.Browser)
	if err != nil {
		return nil, err
	}

	executor, err := m.executor(engine)
	if err != nil {
		return nil, fmt.Errorf("resolve executor for %s: %w", engine, err)
	}

	wd, err := m.connect(capabilitiesFor(engine, m.settings.Headless), executor)
	if err != nil {
		return nil, fmt.Errorf("launch %s session: %w", engine, err)
	}

	if err := m.configure(wd); err != nil {
		_ = wd.Quit()
		return nil, err
	}

	handle := &Handle{owner: owner, engine: engine, wd: wd}

	// A racing Acquire for the same owner may have stored a handle while we
	// were dialing; the stored one wins and the extra session is quit.
	m.mu.Lock()
	if existing, ok := m.handles[owner]; ok {
		m.mu.Unlock()
		_ = wd.Quit()
		return existing, nil
	}
	m.handles[owner] = handle
	m.mu.Unlock()

	m.logger.Info("session acquired",
		zap.String("owner", owner),
		zap.String("engine", engine),
		zap.Bool("headless", m.settings.Headless),
	)

	return handle, nil
}

// Release quits the owner's session and clears the slot. Releasing an owner
// with no active handle is a no-op.
func (m *Manager) Release(owner string) error {
	m.mu.Lock()
	handle, ok := m.handles[owner]
	delete(m.handles, owner)
	m.mu.Unlock()

	if !ok {
		return nil
	}

	if err := handle.wd.Quit(); err != nil {
		return fmt.Errorf("quit %s session for %s: %w", handle.engine, owner, err)
	}

	m.logger.Info("session released", zap.String("owner", owner))
	return nil
}

// ReleaseAll quits every live session, returning the first quit error.
func (m *Manager) ReleaseAll() error {
	m.mu.Lock()
	handles := m.handles
	m.handles = make(map[string]*Handle)
	m.mu.Unlock()

	var firstErr error
	for owner, handle := range handles {
		if err := handle.wd.Quit(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("quit session for %s: %w", owner, err)
		}
	}
	return firstErr
}

// Active reports the number of live handles.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// configure applies the session-wide timeouts and window state expected of
// every fresh session.
func (m *Manager) configure(wd selenium.WebDriver) error {
	if err := wd.SetImplicitWaitTimeout(m.settings.ImplicitWait); err != nil {
		return fmt.Errorf("set implicit wait: %w", err)
	}
	if err := wd.SetPageLoadTimeout(m.settings.PageLoadTimeout); err != nil {
		return fmt.Errorf("set page load timeout: %w", err)
	}
	if err := wd.MaximizeWindow(""); err != nil {
		return fmt.Errorf("maximize window: %w", err)
	}
	return nil
}

// MatchEngine maps a resolved browser name onto a supported engine,
// case-insensitively.
func MatchEngine(browser string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(browser)) {
	case Chrome:
		return Chrome, nil
	case Firefox:
		return Firefox, nil
	case Edge:
		return Edge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBrowser, browser)
	}
}
