// Package engine implements the server's session and protocol engine: it
// owns the listening socket and the set of live connections, reads one
// framed request at a time per connection, resolves it against per-connection
// session state, invokes the mailbox store, and writes back exactly one
// response per request.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mailkeeper/internal/logging"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
	"github.com/dmitrijs2005/mailkeeper/internal/server/mailbox"
	"github.com/dmitrijs2005/mailkeeper/internal/transport"
)

// Store is the mailbox surface the engine dispatches to.
type Store interface {
	CreateAccount(username, password string) (string, error)
	VerifyCredential(username, password string) (string, error)
	ListMessages(username string) ([]mailbox.Summary, error)
	ReadMessage(username string, index int) (*protocol.MessagePayload, error)
	Append(localPart string, msg *protocol.MessagePayload) error
	Stats(username string) (int, int64, error)
}

// Engine multiplexes client connections. Each accepted connection is served
// by one goroutine that reads, dispatches, and answers a single request at a
// time, so no pipelining can occur on a connection; the store serializes its
// own filesystem access, and the session table is the engine's only other
// shared state.
type Engine struct {
	addr   string
	domain string
	store  Store
	logger logging.Logger

	sessions *SessionTable

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]net.Conn
	closed   bool

	wg sync.WaitGroup
}

func New(addr, domain string, store Store, logger logging.Logger) *Engine {
	return &Engine{
		addr:     addr,
		domain:   domain,
		store:    store,
		logger:   logger.With("module", "engine"),
		sessions: NewSessionTable(),
		conns:    make(map[string]net.Conn),
	}
}

// Run binds the listener and serves until ctx is cancelled. A bind failure
// is returned immediately, before any connection is accepted; accept
// failures during normal operation are logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {

	listener, err := net.Listen("tcp", e.addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", e.addr, err)
	}

	e.mu.Lock()
	e.listener = listener
	e.mu.Unlock()

	e.logger.Info(ctx, "listening", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		e.logger.Info(ctx, "shutting down")
		e.closeAll()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			e.logger.Warn(ctx, "accept failed", "error", err)
			continue
		}

		id := uuid.NewString()
		if !e.track(id, conn) {
			continue
		}

		e.wg.Add(1)
		go e.serveConn(ctx, id, conn)
	}

	e.wg.Wait()
	return nil
}

// Addr reports the bound listener address, once Run has bound it.
func (e *Engine) Addr() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return "", false
	}
	return e.listener.Addr().String(), true
}

// serveConn is the per-connection loop: one framed request in, one framed
// response out, repeated until the peer disconnects, violates the protocol,
// or asks to leave.
func (e *Engine) serveConn(ctx context.Context, id string, conn net.Conn) {
	defer e.wg.Done()

	log := e.logger.With("conn_id", id, "remote", conn.RemoteAddr().String())
	log.Info(ctx, "client connected")

	defer func() {
		e.dropConn(id)
		log.Info(ctx, "client disconnected")
	}()

	for {
		data, err := transport.Receive(conn)
		if err != nil {
			if !errors.Is(err, transport.ErrClosed) {
				log.Warn(ctx, "transport failure", "error", err)
			}
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			// protocol violation is not recoverable mid-session
			log.Warn(ctx, "malformed envelope", "error", err)
			return
		}

		if env.Header == protocol.HeaderBye {
			// the one request kind that gets no response
			return
		}

		resp, err := e.dispatch(ctx, id, env, log)
		if err != nil {
			log.Warn(ctx, "malformed request", "header", env.Header, "error", err)
			return
		}

		out, err := protocol.Encode(resp)
		if err != nil {
			log.Error(ctx, "encoding response", "error", err)
			return
		}
		if err := transport.Send(conn, out); err != nil {
			log.Warn(ctx, "send failure", "error", err)
			return
		}
	}
}

// track registers an accepted connection in the live set. It reports false
// when shutdown has already swept the set, in which case the connection was
// accepted concurrently with closeAll and is closed here instead of served.
func (e *Engine) track(id string, conn net.Conn) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		_ = conn.Close()
		return false
	}
	e.conns[id] = conn
	return true
}

// dropConn evicts the connection's session, removes it from the live set,
// and closes the socket.
func (e *Engine) dropConn(id string) {
	e.sessions.Clear(id)

	e.mu.Lock()
	conn, ok := e.conns[id]
	delete(e.conns, id)
	e.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}

// closeAll closes the listener and every live connection, and marks the
// engine closed so a conn accepted concurrently with the sweep is closed by
// the accept path instead of being served. Connection goroutines observe the
// close as a transport failure and drain.
func (e *Engine) closeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.listener != nil {
		_ = e.listener.Close()
	}
	for _, conn := range e.conns {
		_ = conn.Close()
	}
}
