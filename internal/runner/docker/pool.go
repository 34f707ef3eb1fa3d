package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// pool keeps pre-warmed containers of one language's image, so a run
// doesn't pay container start-up latency. A background manager refills
// the channel as containers are checked out.
type pool struct {
	cli       *client.Client
	lang      Language
	config    Config
	logger    *slog.Logger
	ready     chan string
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
}

func newPool(cli *client.Client, lang Language, cfg Config, logger *slog.Logger) *pool {
	return &pool{
		cli:    cli,
		lang:   lang,
		config: cfg,
		logger: logger,
		ready:  make(chan string, cfg.PoolSize),
		done:   make(chan struct{}),
	}
}

// start begins filling the pool in the background.
func (p *pool) start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting sandbox pool",
			slog.String("image", p.lang.Image),
			slog.Int("poolSize", p.config.PoolSize),
		)
		p.wg.Add(1)
		go p.manager()
	})
}

// stop shuts down the manager and removes surviving containers.
func (p *pool) stop() {
	close(p.done)
	p.wg.Wait()

	for {
		select {
		case id := <-p.ready:
			p.removeContainer(id)
		default:
			return
		}
	}
}

// acquire returns a ready container ID, blocking until one is available
// or the context is cancelled.
func (p *pool) acquire(ctx context.Context) (string, error) {
	select {
	case id := <-p.ready:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// manager keeps the ready channel at capacity.
func (p *pool) manager() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		default:
			if len(p.ready) < cap(p.ready) {
				id, err := p.createContainer()
				if err != nil {
					p.logger.Error("failed to create pre-warmed container",
						slog.String("image", p.lang.Image),
						slog.String("error", err.Error()),
					)
					time.Sleep(1 * time.Second) // backoff on failure
					continue
				}

				select {
				case p.ready <- id:
				case <-p.done:
					p.removeContainer(id)
					return
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

// createContainer starts an idle container: no network, capped memory and
// CPU, read-only root filesystem, unprivileged user.
func (p *pool) createContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:   p.config.MemoryLimit,
			NanoCPUs: int64(p.config.CPULimit * 1e9),
		},
		AutoRemove:     false,
		ReadonlyRootfs: true,
	}

	resp, err := p.cli.ContainerCreate(ctx, &container.Config{
		Image:        p.lang.Image,
		Cmd:          []string{"sleep", "infinity"},
		Tty:          false,
		AttachStdout: false,
		AttachStderr: false,
		User:         "nobody",
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("ContainerCreate failed: %w", err)
	}

	if err := p.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		p.removeContainer(resp.ID)
		return "", fmt.Errorf("ContainerStart failed: %w", err)
	}

	return resp.ID, nil
}

// removeContainer force removes a container by ID.
func (p *pool) removeContainer(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = p.cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force: true,
	})
}
