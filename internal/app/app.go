// Package app wires the adapter monitor, session, router and lifecycle
// coordinator around one capability provider and one event queue.
package app

import (
	"context"
	"fmt"

	"btclassic/internal/adapter"
	"btclassic/internal/config"
	"btclassic/internal/device"
	"btclassic/internal/dispatch"
	"btclassic/internal/lifecycle"
	"btclassic/internal/router"
	"btclassic/internal/session"
	"btclassic/pkg/logging"
)

const subsystem = "app"

// Backend is the platform driver: the adapter capability plus discovery.
type Backend interface {
	adapter.Provider
	Scan(ctx context.Context) ([]device.Device, error)
	Close() error
}

// App owns every long-lived component.
type App struct {
	Config      config.Config
	Adapter     *adapter.State
	Session     *session.State
	Queue       *dispatch.Queue
	Router      *router.Router
	Coordinator *lifecycle.Coordinator

	backend  Backend
	loopDone chan struct{}
}

// New builds the component graph. Nothing runs until Start.
func New(cfg config.Config, backend Backend) *App {
	state := adapter.NewState(cfg.InitialEnabled())
	sess := session.New(state)
	queue := dispatch.NewQueue(cfg.QueueSize)
	monitor := adapter.NewMonitor(backend, sess, queue)

	a := &App{
		Config:      cfg,
		Adapter:     state,
		Session:     sess,
		Queue:       queue,
		Router:      router.New(sess, queue),
		Coordinator: lifecycle.New(monitor),
		backend:     backend,
		loopDone:    make(chan struct{}),
	}
	a.Coordinator.OnPhase(func(p lifecycle.Phase) {
		logging.Info(subsystem, "Lifecycle %s", p)
	})
	return a
}

// Start runs the event queue and starts the coordinator.
func (a *App) Start(ctx context.Context) error {
	go func() {
		defer close(a.loopDone)
		if err := a.Queue.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Error(subsystem, err, "Event queue stopped")
		}
	}()
	if err := a.Coordinator.Start(ctx); err != nil {
		a.Queue.Close()
		<-a.loopDone
		return fmt.Errorf("app: start: %w", err)
	}
	return nil
}

// Stop releases the adapter subscriptions, drains the queue goroutine and
// closes the backend.
func (a *App) Stop() error {
	stopErr := a.Coordinator.Stop()
	a.Queue.Close()
	<-a.loopDone
	if err := a.backend.Close(); err != nil {
		logging.Error(subsystem, err, "Closing backend")
	}
	if stopErr != nil {
		return fmt.Errorf("app: stop: %w", stopErr)
	}
	return nil
}

// Run starts the app, blocks until ctx is done and stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop()
}

// Scan runs one discovery pass bounded by the configured scan timeout.
func (a *App) Scan(ctx context.Context) ([]device.Device, error) {
	if a.Config.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.ScanTimeout)
		defer cancel()
	}
	devs, err := a.backend.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: scan: %w", err)
	}
	logging.Info(subsystem, "Scan found %d SPP devices", len(devs))
	return devs, nil
}
