// Package config loads harness runtime configuration from multiple sources
// (YAML files, environment variables, CLI flags) with precedence: CLI flags >
// YAML config > Environment variables > Defaults. It covers the knobs the
// test settings document does not: driver service paths and ports, the
// remote WebDriver URL, artifact placement, and log level.
package config
