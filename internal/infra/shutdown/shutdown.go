package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
)

// Handler handles graceful shutdown and reload.
type Handler struct {
	timeout time.Duration

	mu       sync.Mutex
	hooks    []func(context.Context) error
	reloads  []func()
	done     chan struct{}
	doneOnce sync.Once
}

// NewHandler creates a new shutdown handler. timeout bounds the time all
// shutdown hooks together may take.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// OnReload registers a hook run on SIGHUP.
func (h *Handler) OnReload(hook func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads = append(h.reloads, hook)
}

// Wait blocks until SIGINT, SIGTERM or ctx cancellation, then runs the
// shutdown hooks. Every hook runs even if an earlier one fails; the
// returned error combines all hook errors.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

wait:
	for {
		select {
		case sig := <-sigCh:
			if sig != syscall.SIGHUP {
				break wait
			}
			h.reload()
		case <-ctx.Done():
			break wait
		}
	}
	return h.Shutdown()
}

// Shutdown runs the shutdown hooks once. Later calls return nil.
func (h *Handler) Shutdown() error {
	var err error
	h.doneOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]func(context.Context) error, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			err = multierr.Append(err, hooks[i](ctx))
		}
		close(h.done)
	})
	return err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) reload() {
	h.mu.Lock()
	reloads := make([]func(), len(h.reloads))
	copy(reloads, h.reloads)
	h.mu.Unlock()

	for _, fn := range reloads {
		fn()
	}
}
