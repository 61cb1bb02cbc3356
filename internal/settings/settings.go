package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL         = "https://automationexercise.com"
	defaultBrowser         = "Chrome"
	defaultImplicitWait    = 10 * time.Second
	defaultPageLoadTimeout = 30 * time.Second
	defaultValidUsername   = "admin"
	defaultValidPassword   = "password"
)

// Settings is the resolved view over the test settings document. It is a
// plain value: construct it once with Load and hand it to whoever needs it.
type Settings struct {
	BaseURL             string
	Browser             string
	Headless            bool
	ImplicitWait        time.Duration
	PageLoadTimeout     time.Duration
	ScreenshotOnFailure bool
	ValidUsername       string
	ValidPassword       string

	environments map[string]string
}

// LoadError reports a settings document that is missing or malformed. There
// is no fallback for an unreadable document; callers should treat it as fatal.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load settings %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// document mirrors the JSON settings file structure. Boolean and integer
// fields are decoded as raw messages so a value of the wrong type degrades to
// the default instead of failing the whole document.
type document struct {
	TestSettings testSettings `json:"TestSettings"`
	TestData     testData     `json:"TestData"`
}

type testSettings struct {
	BaseURL             string            `json:"BaseUrl"`
	Browser             string            `json:"Browser"`
	Headless            json.RawMessage   `json:"Headless"`
	ImplicitWait        json.RawMessage   `json:"ImplicitWait"`
	PageLoadTimeout     json.RawMessage   `json:"PageLoadTimeout"`
	ScreenshotOnFailure json.RawMessage   `json:"ScreenshotOnFailure"`
	Environments        map[string]string `json:"Environments"`
}

type testData struct {
	ValidUsername string `json:"ValidUsername"`
	ValidPassword string `json:"ValidPassword"`
}

// Load resolves settings from the JSON document at path, the process
// environment, and built-in defaults. Environment variables (BROWSER,
// HEADLESS, SCREENSHOT_ON_FAILURE) are read exactly once, here; changes made
// to the environment after Load are not observed.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, &LoadError{Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, &LoadError{Path: path, Err: fmt.Errorf("parse JSON: %w", err)}
	}

	st := defaultSettings()
	applyDocument(&st, &doc)
	applyEnv(&st)

	return st, nil
}

// EnvironmentURL returns the URL configured for the named environment under
// TestSettings.Environments, falling back to BaseURL when the name is not
// configured.
func (s Settings) EnvironmentURL(name string) string {
	if url, ok := s.environments[name]; ok && url != "" {
		return url
	}
	return s.BaseURL
}

// defaultSettings returns a Settings with default values.
func defaultSettings() Settings {
	return Settings{
		BaseURL:             defaultBaseURL,
		Browser:             defaultBrowser,
		Headless:            false,
		ImplicitWait:        defaultImplicitWait,
		PageLoadTimeout:     defaultPageLoadTimeout,
		ScreenshotOnFailure: true,
		ValidUsername:       defaultValidUsername,
		ValidPassword:       defaultValidPassword,
	}
}

// applyDocument applies document values over the defaults.
func applyDocument(st *Settings, doc *document) {
	if doc.TestSettings.BaseURL != "" {
		st.BaseURL = doc.TestSettings.BaseURL
	}

	if doc.TestSettings.Browser != "" {
		st.Browser = doc.TestSettings.Browser
	}

	if value, ok := parseBoolValue(doc.TestSettings.Headless); ok {
		st.Headless = value
	}

	if secs, ok := parseIntValue(doc.TestSettings.ImplicitWait); ok && secs >= 0 {
		st.ImplicitWait = time.Duration(secs) * time.Second
	}

	if secs, ok := parseIntValue(doc.TestSettings.PageLoadTimeout); ok && secs >= 0 {
		st.PageLoadTimeout = time.Duration(secs) * time.Second
	}

	if value, ok := parseBoolValue(doc.TestSettings.ScreenshotOnFailure); ok {
		st.ScreenshotOnFailure = value
	}

	if len(doc.TestSettings.Environments) > 0 {
		st.environments = make(map[string]string, len(doc.TestSettings.Environments))
		for name, url := range doc.TestSettings.Environments {
			st.environments[name] = url
		}
	}

	if doc.TestData.ValidUsername != "" {
		st.ValidUsername = doc.TestData.ValidUsername
	}

	if doc.TestData.ValidPassword != "" {
		st.ValidPassword = doc.TestData.ValidPassword
	}
}

// applyEnv applies environment variable overrides over the document values.
func applyEnv(st *Settings) {
	if browser := strings.TrimSpace(os.Getenv("BROWSER")); browser != "" {
		st.Browser = browser
	}

	if raw := os.Getenv("HEADLESS"); raw != "" {
		if value, ok := parseBool(raw); ok {
			st.Headless = value
		}
	}

	if raw := os.Getenv("SCREENSHOT_ON_FAILURE"); raw != "" {
		if value, ok := parseBool(raw); ok {
			st.ScreenshotOnFailure = value
		}
	}
}

// parseBool accepts only the canonical textual forms "true" and "false" in
// any letter-casing. Anything else reports no value.
func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "true") {
		return true, true
	}
	if strings.EqualFold(raw, "false") {
		return false, true
	}
	return false, false
}

// parseBoolValue reads a document boolean that may be a JSON bool or a quoted
// canonical form.
func parseBoolValue(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}

	var value bool
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return parseBool(text)
	}

	return false, false
}

// parseIntValue reads a document integer that may be a JSON number or a
// quoted numeric string.
func parseIntValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var value int
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return parsed, true
		}
	}

	return 0, false
}
