//go:build dev
// +build dev

package build

// Deployment specifies a development build.
const Deployment = Development

// LogLevel is the level used by the stdout loggers created while running
// unit tests with the dev tag.
const LogLevel = "debug"
