// Package settings resolves the test settings document (JSON) against process
// environment variables and built-in defaults. Resolution works per setting
// with precedence: environment variable > document key > default. Unparsable
// values fall through to the next source instead of erroring; only a missing
// or malformed document is fatal.
package settings
