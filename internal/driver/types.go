package driver

import "github.com/tebeka/selenium"

// Supported browser engines, in the canonical form produced by MatchEngine.
const (
	Chrome  = "chrome"
	Firefox = "firefox"
	Edge    = "edge"
)

// Connector dials a WebDriver session against an executor URL. It matches
// the signature of selenium.NewRemote so the real client and test fakes are
// interchangeable.
type Connector func(caps selenium.Capabilities, executor string) (selenium.WebDriver, error)

// ExecutorFunc resolves the WebDriver endpoint URL for an engine.
type ExecutorFunc func(engine string) (string, error)

// Handle is a live browser session bound to exactly one owner. Handles are
// never shared or migrated between owners.
type Handle struct {
	owner  string
	engine string
	wd     selenium.WebDriver
}

// Driver returns the underlying WebDriver session.
func (h *Handle) Driver() selenium.WebDriver { return h.wd }

// Owner returns the owner key the handle is bound to.
func (h *Handle) Owner() string { return h.owner }

// Engine returns the matched engine name (chrome, firefox, or edge).
func (h *Handle) Engine() string { return h.engine }
