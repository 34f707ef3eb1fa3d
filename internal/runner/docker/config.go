package docker

import "time"

// Language describes how one programming language is sandboxed: which
// image runs it and how the interpreter is invoked. Code is appended as
// the final argument of Command.
type Language struct {
	Image   string
	Command []string
}

// Config holds the sandbox configuration shared by all language pools.
type Config struct {
	// Languages maps programming-language IDs to their sandbox setup.
	Languages map[string]Language
	// MemoryLimit is the per-container memory cap in bytes.
	MemoryLimit int64
	// CPULimit is the number of CPUs a container may use.
	CPULimit float64
	// Timeout is the wall-clock cap on a single run.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers kept per language.
	PoolSize int
}

// DefaultConfig sandboxes the two interpreted languages the catalog
// ships with runnable support for.
func DefaultConfig() Config {
	return Config{
		Languages: map[string]Language{
			"python": {
				Image:   "python:3.12-alpine",
				Command: []string{"python", "-c"},
			},
			"javascript": {
				Image:   "node:22-alpine",
				Command: []string{"node", "-e"},
			},
		},
		MemoryLimit: 128 * 1024 * 1024, // 128 MB
		CPULimit:    0.5,
		Timeout:     5 * time.Second,
		PoolSize:    2,
	}
}
