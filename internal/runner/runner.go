// Package runner defines the interface for executing snippet code in an
// isolated environment. The Docker implementation lives in runner/docker;
// the server degrades gracefully (run endpoint unavailable) when no
// implementation is configured.
package runner

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupportedLanguage is returned when no sandbox exists for the
// snippet's programming language.
var ErrUnsupportedLanguage = errors.New("runner: unsupported language")

// Request asks for a snippet's code to be executed. Language is the
// programming-language ID of the snippet (e.g. "python").
type Request struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Result is the captured outcome of a sandboxed run.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Runner executes snippet code in an isolated environment.
type Runner interface {
	// Run executes the request. Returns ErrUnsupportedLanguage when the
	// language has no sandbox.
	Run(ctx context.Context, req Request) (*Result, error)
	// Supports reports whether the language can be executed.
	Supports(language string) bool
}
