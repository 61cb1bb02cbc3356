package driver

import "errors"

var (
	// ErrUnsupportedBrowser is returned when the resolved browser name does not
	// match any supported engine.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
)
