// Package rpc provides JSON RPC server over HTTP and WS protocols.
package rpc

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	stringsUtil "github.com/polywrap/near-engine/pkg/collection/strings"
	"github.com/polywrap/near-engine/pkg/log"
)

const (
	RPCTypeHTTP = "http"
	RPCTypeWS   = "ws"
)

type Invoker interface {
	Invoke(ctx context.Context, endpoint string, data []byte) EndpointResponse
}

// Options holds limits applied to every request.
type Options struct {
	// RateLimit is the number of HTTP requests handled per second. Zero disables the limit.
	RateLimit      int
	RequestTimeout time.Duration
	MaxRequestSize int64
}

type listener interface {
	ListenAndServe() error
	Close() error
}

type RPCServer struct {
	done       chan bool
	closeOnce  sync.Once
	httpServer *httpJSONRPCServer
	wsServer   *wsJSONRPCServer
	// wsShared is true when the WS endpoint is served by the HTTP server.
	wsShared bool
}

func NewRPCServer(logger log.Logger, enabled []string, invoker Invoker, port int, address string, opts Options) *RPCServer {
	server := &RPCServer{
		done: make(chan bool),
	}
	if stringsUtil.Contain(enabled, RPCTypeHTTP) {
		logger.Infof("Starting HTTP RPC server at %d on %s", port, address)
		server.httpServer = NewHTTPJSONServer(logger, port, address, invoker, opts)
	}
	if stringsUtil.Contain(enabled, RPCTypeWS) {
		logger.Infof("Starting WS RPC server at %d on %s", port, address)
		if server.httpServer != nil {
			server.wsServer = NewWSJSONRPCServerWithHTTPServer(logger, invoker, server.httpServer.httpMux, server.httpServer.httpServer, opts)
			server.wsShared = true
		} else {
			server.wsServer = NewWSJSONRPCServer(logger, port, address, invoker, opts)
		}
	}
	return server
}

// ListenAndServe blocks until Close is called or one of the servers fails.
func (s *RPCServer) ListenAndServe() error {
	servers := []listener{}
	if s.httpServer != nil {
		servers = append(servers, s.httpServer)
	}
	if s.wsServer != nil && !s.wsShared {
		servers = append(servers, s.wsServer)
	}
	if len(servers) == 0 {
		return errors.New("no rpc mode is enabled")
	}
	errs := make(chan error, len(servers))
	for _, server := range servers {
		go func(server listener) {
			errs <- server.ListenAndServe()
		}(server)
	}
	select {
	case <-s.done:
		return nil
	case err := <-errs:
		closeErr := s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return closeErr
		}
		return err
	}
}

// Publish sends the event to WS connections subscribed to it.
func (s *RPCServer) Publish(method string, data []byte) {
	if s.wsServer != nil {
		s.wsServer.Publish(method, data)
	}
}

func (s *RPCServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		errs := []error{}
		if s.wsServer != nil {
			if err := s.wsServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}
		if s.httpServer != nil {
			if err := s.httpServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
