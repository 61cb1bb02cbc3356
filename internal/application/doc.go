// Package application provides harness initialization and dependency wiring.
// It encapsulates the creation of the driver service supervisor, the browser
// session manager, and the artifacts recorder, making the main package
// cleaner and more focused on CLI parsing and orchestration.
package application
