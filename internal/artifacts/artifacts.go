package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScreenshotSource is the part of a WebDriver session the Recorder needs.
type ScreenshotSource interface {
	Screenshot() ([]byte, error)
}

// Recorder stores screenshots under the artifacts directory. The directory is
// created on first use.
type Recorder struct {
	dir     string
	enabled bool
	logger  *zap.Logger
	clock   func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces the timestamp source, primarily for testing.
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// NewRecorder builds a Recorder writing into dir. The enabled flag gates
// CaptureFailure only; explicit Capture calls always write.
func NewRecorder(dir string, enabled bool, logger *zap.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		dir:     dir,
		enabled: enabled,
		logger:  logger,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capture grabs a screenshot from the session and writes it as a PNG,
// returning the path of the stored file.
func (r *Recorder) Capture(name string, src ScreenshotSource) (string, error) {
	png, err := src.Screenshot()
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts directory: %w", err)
	}

	path := filepath.Join(r.dir, r.fileName(name))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	r.logger.Info("screenshot captured", zap.String("path", path))
	return path, nil
}

// CaptureFailure stores a screenshot for a failed step. It is a no-op
// returning an empty path when failure screenshots are disabled.
func (r *Recorder) CaptureFailure(name string, src ScreenshotSource) (string, error) {
	if !r.enabled {
		return "", nil
	}
	return r.Capture(name, src)
}

// fileName builds <name>_<timestamp>_<id>.png. The random id keeps captures
// within the same second from clobbering each other.
func (r *Recorder) fileName(name string) string {
	stamp := r.clock().Format("20060102T150405")
	id := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s_%s.png", sanitize(name), stamp, id)
}

var nameSanitizer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "screenshot"
	}
	return nameSanitizer.Replace(name)
}
