package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/ratelimit"

	"github.com/polywrap/near-engine/pkg/log"
)

type httpJSONRPCServer struct {
	invoker    Invoker
	logger     log.Logger
	limiter    ratelimit.Limiter
	opts       Options
	httpServer *http.Server
	httpMux    *http.ServeMux
}

func NewHTTPJSONServer(logger log.Logger, port int, addr string, invoker Invoker, opts Options) *httpJSONRPCServer {
	server := &httpJSONRPCServer{
		invoker: invoker,
		logger:  logger,
		opts:    opts,
	}
	if opts.RateLimit > 0 {
		server.limiter = ratelimit.New(opts.RateLimit)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", server.HandleRequest)
	bindingAddr := addr
	if addr == "" {
		bindingAddr = "127.0.0.1"
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bindingAddr, port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 1,
	}
	server.httpServer = httpServer
	server.httpMux = mux

	return server
}

func (s *httpJSONRPCServer) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *httpJSONRPCServer) Close() error {
	return s.httpServer.Close()
}

func (s *httpJSONRPCServer) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte("Invalid method")); err != nil {
			s.logger.Errorf("Fail to write message with %s", err)
		}
		return
	}
	if s.limiter != nil {
		s.limiter.Take()
	}
	w.Header().Set("Content-Type", "application/json")
	s.logger.Debugf("Received request from %s", r.RemoteAddr)
	if s.opts.MaxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxRequestSize)
	}
	body := &JSONRPCRequest{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		s.write(w, http.StatusBadRequest, getErrResponse(nil, err, jsonRPCParseError))
		return
	}
	if err := body.Validate(); err != nil {
		s.write(w, http.StatusBadRequest, getErrResponse(body.ID, err, jsonRPCInvalidRequestError))
		return
	}
	s.logger.Infof("Received request from %s for method %s", r.RemoteAddr, body.Method)
	ctx, cancel := withTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	result, ok := handleRequest(ctx, s.invoker, body)
	if !ok {
		s.write(w, http.StatusBadRequest, result)
		return
	}
	s.write(w, http.StatusOK, result)
}

func (s *httpJSONRPCServer) write(w http.ResponseWriter, status int, body []byte) {
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Errorf("Fail to write message with %s", err)
	}
}
