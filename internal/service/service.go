package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mpetrenko/webharness/internal/config"
	"github.com/mpetrenko/webharness/internal/driver"
)

// Service is a single supervised WebDriver service process.
type Service struct {
	cmd  *exec.Cmd
	addr string
}

// Supervisor owns the WebDriver endpoints the harness talks to. With a remote
// URL configured it hands that out for every engine and never starts a
// process; otherwise it starts one local driver service per engine on demand
// and reuses it until Stop.
type Supervisor struct {
	cfg    config.DriverConfig
	remote string
	logger *zap.Logger
	output io.Writer

	mu       sync.Mutex
	services map[string]*Service
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithOutput redirects driver service process output, primarily for
// debugging. By default it is discarded.
func WithOutput(w io.Writer) Option {
	return func(s *Supervisor) {
		s.output = w
	}
}

// New builds a Supervisor from the harness configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:      cfg.Driver,
		remote:   cfg.RemoteURL,
		logger:   logger,
		output:   io.Discard,
		services: make(map[string]*Service),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExecutorURL returns the WebDriver endpoint for an engine, starting the
// matching driver service first if none is running yet.
func (s *Supervisor) ExecutorURL(engine string) (string, error) {
	if s.remote != "" {
		return s.remote, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.services[engine]; ok {
		return svc.addr, nil
	}

	svc, err := s.start(engine)
	if err != nil {
		return "", err
	}
	s.services[engine] = svc

	return svc.addr, nil
}

// Stop terminates every started driver service. It is safe to call more than
// once and a no-op when only a remote URL was used.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	services := s.services
	s.services = make(map[string]*Service)
	s.mu.Unlock()

	for engine, svc := range services {
		if err := stopService(svc.cmd); err != nil {
			s.logger.Warn("driver service stop failed",
				zap.String("engine", engine),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("driver service stopped", zap.String("engine", engine))
	}
}

// start launches and waits for the driver service matching the engine.
// ChromeDriver and msedgedriver share the same flag dialect; geckodriver
// speaks its own and serves the WebDriver API at the root path.
func (s *Supervisor) start(engine string) (*Service, error) {
	port := s.cfg.Port
	if port == 0 {
		p, err := freePort()
		if err != nil {
			return nil, fmt.Errorf("allocate driver port: %w", err)
		}
		port = p
	}

	var cmd *exec.Cmd
	var addr string
	switch engine {
	case driver.Chrome:
		cmd = exec.Command(s.cfg.ChromeDriverPath, fmt.Sprintf("--port=%d", port), "--url-base=wd/hub")
		addr = fmt.Sprintf("http://localhost:%d/wd/hub", port)
	case driver.Edge:
		cmd = exec.Command(s.cfg.EdgeDriverPath, fmt.Sprintf("--port=%d", port), "--url-base=wd/hub")
		addr = fmt.Sprintf("http://localhost:%d/wd/hub", port)
	case driver.Firefox:
		cmd = exec.Command(s.cfg.GeckoDriverPath, "--port", strconv.Itoa(port))
		addr = fmt.Sprintf("http://localhost:%d", port)
	default:
		return nil, fmt.Errorf("%w: %q", driver.ErrUnsupportedBrowser, engine)
	}

	cmd.Stdout = s.output
	cmd.Stderr = s.output

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s driver service: %w", engine, err)
	}

	s.logger.Info("driver service started",
		zap.String("engine", engine),
		zap.String("addr", addr),
		zap.Int("pid", cmd.Process.Pid),
	)

	if err := s.waitReady(addr); err != nil {
		_ = stopService(cmd)
		return nil, err
	}

	return &Service{cmd: cmd, addr: addr}, nil
}

// waitReady polls the service status endpoint until it responds or the start
// timeout elapses. ChromeDriver replies 200; Selenium hubs reply 403 or 400
// until a session exists. Any of them means the endpoint is up.
func (s *Supervisor) waitReady(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StartTimeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(s.cfg.PollInterval), 1)
	statusURL := addr + "/status"

	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("driver service at %s not ready within %s", addr, s.cfg.StartTimeout)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK, http.StatusForbidden, http.StatusBadRequest:
			return nil
		}
	}
}

func stopService(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil {
		return err
	}
	if err := cmd.Wait(); err != nil && err.Error() != "signal: killed" {
		return err
	}
	return nil
}

// freePort asks the kernel for an unused TCP port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
