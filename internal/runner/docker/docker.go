// Package docker executes snippets inside isolated Docker containers.
// Each supported language maps to an image and a warm pool of idle
// containers; a run checks one out, execs the code inside it, and the
// container is discarded afterwards.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/snippets-library/internal/runner"
)

// Executor runs snippets in per-language sandbox containers.
type Executor struct {
	cli    *client.Client
	config Config
	pools  map[string]*pool
	logger *slog.Logger
}

// NewExecutor connects to the Docker daemon, pulls every configured
// language image, and starts a warm pool per language. It fails fast if
// the daemon is unreachable or an image cannot be pulled.
func NewExecutor(ctx context.Context, cfg Config, logger *slog.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker daemon unreachable: %w", err)
	}

	e := &Executor{
		cli:    cli,
		config: cfg,
		pools:  make(map[string]*pool, len(cfg.Languages)),
		logger: logger,
	}

	for name, lang := range cfg.Languages {
		if err := e.pullImage(ctx, lang.Image); err != nil {
			return nil, err
		}
		p := newPool(cli, lang, cfg, logger.With(slog.String("language", name)))
		p.start()
		e.pools[name] = p
	}

	return e, nil
}

// Supports reports whether a language has a configured sandbox image.
func (e *Executor) Supports(language string) bool {
	_, ok := e.config.Languages[language]
	return ok
}

// Run executes req.Code inside a pre-warmed container for req.Language.
// The container is removed when the run finishes, timed out, or fails.
// A timed-out run returns exit code 124 rather than an error.
func (e *Executor) Run(ctx context.Context, req runner.Request) (*runner.Result, error) {
	lang, ok := e.config.Languages[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", runner.ErrUnsupportedLanguage, req.Language)
	}

	p := e.pools[req.Language]

	acquireCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	containerID, err := p.acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("no sandbox container available: %w", err)
	}
	defer p.removeContainer(containerID)

	start := time.Now()
	result, err := e.exec(ctx, containerID, lang, req.Code)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)

	return result, nil
}

// Close shuts down every pool and the client connection.
func (e *Executor) Close() error {
	for _, p := range e.pools {
		p.stop()
	}
	return e.cli.Close()
}

// exec runs the language command with the code appended as its final
// argument, capturing demultiplexed stdout and stderr.
func (e *Executor) exec(ctx context.Context, containerID string, lang Language, code string) (*runner.Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cmd := append(append([]string{}, lang.Command...), code)

	execResp, err := e.cli.ContainerExecCreate(execCtx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ContainerExecCreate failed: %w", err)
	}

	attach, err := e.cli.ContainerExecAttach(execCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("ContainerExecAttach failed: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	copyDone := make(chan error, 1)
	go func() {
		// Docker multiplexes both streams over one connection;
		// stdcopy splits them back apart.
		_, copyErr := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		copyDone <- copyErr
	}()

	select {
	case copyErr := <-copyDone:
		if copyErr != nil && !errors.Is(copyErr, io.EOF) {
			return nil, fmt.Errorf("failed to read exec output: %w", copyErr)
		}
	case <-execCtx.Done():
		return &runner.Result{
			Stdout:   stdout.String(),
			Stderr:   "execution timed out",
			ExitCode: 124,
		}, nil
	}

	inspect, err := e.cli.ContainerExecInspect(context.Background(), execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("ContainerExecInspect failed: %w", err)
	}

	return &runner.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: inspect.ExitCode,
	}, nil
}

// pullImage pulls an image and drains the progress stream so the pull
// actually completes before we return.
func (e *Executor) pullImage(ctx context.Context, ref string) error {
	e.logger.Info("pulling sandbox image", slog.String("image", ref))

	reader, err := e.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to complete pull of %s: %w", ref, err)
	}

	return nil
}
