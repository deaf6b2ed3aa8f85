// Package server runs the storyteller's long-lived services and shuts them
// down in reverse order on SIGINT, SIGTERM or context cancellation.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Start runs the service and blocks until it stops or fails.
	Start() error
	// Stop asks a running service to return from Start.
	Stop()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

type component struct {
	name    string
	service Service
	closer  func() error
}

// Lifecycle starts services in registration order and tears everything down
// in reverse order. Closers release resources such as stores once the
// services registered after them have stopped.
type Lifecycle struct {
	logger *zap.Logger

	mu         sync.Mutex
	components []component
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = append(l.components, component{name: name, service: svc})
}

// AddCloser registers a resource released during shutdown.
//
// Precondition: name must be non-empty; closeFn must be non-nil.
func (l *Lifecycle) AddCloser(name string, closeFn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = append(l.components, component{name: name, closer: closeFn})
}

// Run starts every service and blocks until a termination signal, ctx
// cancellation, or a service failure. It then stops services and runs closers
// in reverse registration order and waits for every Start call to return.
//
// Postcondition: Returns nil on a requested shutdown, or the errors of failed
// services and closers joined together.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	components := append([]component(nil), l.components...)
	l.mu.Unlock()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		errs    []error
		failed  = make(chan struct{})
		failOne sync.Once
	)
	record := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	services := 0
	for _, c := range components {
		if c.service == nil {
			continue
		}
		services++
		wg.Add(1)
		go func(c component) {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", c.name))
			svcStart := time.Now()
			if err := c.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", c.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				record(fmt.Errorf("service %s: %w", c.name, err))
				failOne.Do(func() { close(failed) })
			}
		}(c)
	}
	l.logger.Info("services started", zap.Int("count", services), zap.Duration("startup", time.Since(start)))

	select {
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case <-failed:
		l.logger.Warn("service failure, shutting down")
	}

	l.shutdown(components, record)
	wg.Wait()

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return errors.Join(errs...)
}

func (l *Lifecycle) shutdown(components []component, record func(error)) {
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		t := time.Now()
		if c.service != nil {
			c.service.Stop()
		} else if err := c.closer(); err != nil {
			l.logger.Error("closing resource", zap.String("resource", c.name), zap.Error(err))
			record(fmt.Errorf("closing %s: %w", c.name, err))
			continue
		}
		l.logger.Info("stopped", zap.String("component", c.name), zap.Duration("elapsed", time.Since(t)))
	}
}
