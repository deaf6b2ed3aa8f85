package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/storyteller/internal/config"
)

// SessionHandler runs the command loop for one connected client. It returns
// when the client quits, the connection fails, or ctx is cancelled.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor accepts Telnet clients and runs a SessionHandler for each one.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	stopped  bool
}

// NewAcceptor creates an Acceptor for cfg.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready for ListenAndServe or Serve.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ready:   make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[*Conn]struct{}),
	}
}

// ListenAndServe listens on cfg.Addr() and serves until Stop is called.
//
// Postcondition: Returns nil after Stop, or the listen or accept error.
func (a *Acceptor) ListenAndServe() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		a.markReady()
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ln)
}

// Serve accepts clients from ln until Stop is called. Serve takes ownership of ln.
//
// Precondition: Serve must be called at most once.
// Postcondition: Returns nil after Stop, or the first non-temporary accept error.
func (a *Acceptor) Serve(ln net.Listener) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		_ = ln.Close()
		a.markReady()
		return nil
	}
	a.listener = ln
	a.mu.Unlock()
	a.markReady()

	a.logger.Info("telnet acceptor listening", zap.String("addr", ln.Addr().String()))

	var backoff time.Duration
	for {
		raw, err := ln.Accept()
		if err != nil {
			if a.ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
				a.logger.Warn("accept failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		backoff = 0

		conn := NewConn(raw, a.cfg)
		if !a.track(conn) {
			_ = conn.Close()
			return nil
		}
		a.wg.Add(1)
		go a.serveConn(conn)
	}
}

func (a *Acceptor) track(c *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.conns[c] = struct{}{}
	return true
}

func (a *Acceptor) untrack(c *Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.conns, c)
}

func (a *Acceptor) serveConn(conn *Conn) {
	defer a.wg.Done()
	defer a.untrack(conn)
	defer conn.Close()

	start := time.Now()
	addr := conn.RemoteAddr().String()
	a.logger.Info("client connected", zap.String("remote_addr", addr))

	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	err := a.handler.HandleSession(a.ctx, conn)
	fields := []zap.Field{
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		a.logger.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("session ended cleanly", fields...)
}

// Ready is closed once the acceptor is listening, or once it has given up
// starting because it was stopped first or could not listen.
func (a *Acceptor) Ready() <-chan struct{} {
	return a.ready
}

func (a *Acceptor) markReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

// Stop closes the listener, cancels every session, closes every client
// connection, and waits for the session goroutines to exit. Stop is idempotent.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	open := len(a.conns)
	for c := range a.conns {
		_ = c.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped", zap.Int("closed_sessions", open))
}

// Addr returns the listening address, or "" before Serve has started.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Sessions returns the number of connected clients.
func (a *Acceptor) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}
