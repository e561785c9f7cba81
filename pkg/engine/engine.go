// Package engine runs the NEAR transaction codec service.
// It wires the JSON RPC server, the router and the codec endpoints together.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/polywrap/near-engine/pkg/db"
	"github.com/polywrap/near-engine/pkg/engine/config"
	"github.com/polywrap/near-engine/pkg/engine/endpoint"
	"github.com/polywrap/near-engine/pkg/history"
	"github.com/polywrap/near-engine/pkg/log"
	"github.com/polywrap/near-engine/pkg/router"
	"github.com/polywrap/near-engine/pkg/rpc"
)

var errUnexpectedEventData = errors.New("unexpected event data")

type eventPublisher interface {
	Publish(method string, data []byte)
}

type Engine struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   log.Logger
	config   *config.Config
	stopOnce sync.Once

	// instances
	router    *router.Router
	server    *rpc.RPCServer
	historyDB *db.DB
	history   *history.Store
}

// NewEngine returns engine with the config. When logger is nil, a production logger
// with the configured level is created on Start.
func NewEngine(config *config.Config, logger log.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ctx:    ctx,
		cancel: cancel,
		config: config,
		logger: logger,
	}
}

// Start serves the RPC server and blocks until Stop is called or the server fails.
func (e *Engine) Start() error {
	if err := e.init(); err != nil {
		return err
	}
	defer e.cancel()

	e.server = rpc.NewRPCServer(
		e.logger.With("module", "rpc"),
		e.config.RPC.Modes,
		e.router,
		e.config.RPC.Port,
		e.config.RPC.Host,
		rpc.Options{
			RateLimit:      e.config.RPC.GetRateLimit(),
			RequestTimeout: time.Duration(e.config.RPC.RequestTimeout) * time.Millisecond,
			MaxRequestSize: int64(e.config.RPC.MaxRequestSize),
		},
	)
	go e.handleEvents(e.router.Subscribe(RPCEventTransactionDecoded), e.server)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.server.ListenAndServe()
	}()

	e.logger.Infof("Started codec service %s at %s", e.config.System.Version, e.config.RPC.Address())
	var err error
	select {
	case <-e.ctx.Done():
	case err = <-serverErr:
		if err != nil {
			e.logger.Errorf("Fail to serve RPC with %s", err)
		}
	}
	if closeErr := e.server.Close(); closeErr != nil {
		e.logger.Errorf("Fail to close RPC server with %s", closeErr)
	}
	e.router.Close()
	if e.historyDB != nil {
		if closeErr := e.historyDB.Close(); closeErr != nil {
			e.logger.Errorf("Fail to close history database with %s", closeErr)
		}
	}
	return err
}

// Stop cancels a running Start.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.logger != nil {
			e.logger.Info("Closing application")
		}
		e.cancel()
	})
}

// Router returns the router, which is available after Start is called.
func (e *Engine) Router() *router.Router {
	return e.router
}

func (e *Engine) init() error {
	if e.config == nil {
		e.config = config.Default()
	}
	if err := e.config.InsertDefault(); err != nil {
		return err
	}
	if err := e.config.Validate(); err != nil {
		return err
	}
	if e.logger == nil {
		level, err := log.ParseLevel(e.config.System.LogLevel)
		if err != nil {
			return err
		}
		logger, err := log.NewLogger(level)
		if err != nil {
			return err
		}
		e.logger = logger
	}
	e.router = router.NewRouter(e.logger.With("module", "router"))
	if err := e.router.RegisterEvents(endpoint.NamespaceNear, endpoint.EventTransactionDecoded); err != nil {
		return err
	}
	endpoints := []router.Endpoint{
		endpoint.NewNearEndpoint(e.config.Codec, e.router),
		endpoint.NewSystemEndpoint(e.config, e.router),
	}
	if e.config.History.Enabled {
		if err := e.initHistory(); err != nil {
			return err
		}
		endpoints = append(endpoints, endpoint.NewHistoryEndpoint(e.history))
	}
	for _, ep := range endpoints {
		if err := e.router.RegisterEndpoints(ep); err != nil {
			return err
		}
	}
	e.router.RegisterNotFoundHandler(func(namespace, method string, w router.EndpointResponseWriter, r *router.EndpointRequest) {
		r.Logger().Debugf("Request to unknown endpoint %s at %s", method, namespace)
		w.Error(rpc.ErrMethodNotFound)
	})
	return nil
}

func (e *Engine) initHistory() error {
	dataPath, err := e.config.History.ResolvedDataPath()
	if err != nil {
		return err
	}
	var historyDB *db.DB
	if dataPath == "" {
		e.logger.Info("Keeping transaction history in memory")
		historyDB, err = db.NewInMemoryDB()
	} else {
		e.logger.Infof("Keeping transaction history at %s", dataPath)
		historyDB, err = db.NewDB(dataPath)
	}
	if err != nil {
		return err
	}
	store, err := history.NewStore(historyDB, e.config.History.Capacity)
	if err != nil {
		historyDB.Close()
		return err
	}
	e.historyDB = historyDB
	e.history = store
	return nil
}

func (e *Engine) handleEvents(transactionDecoded <-chan rpc.EventContent, publisher eventPublisher) {
	for {
		select {
		case <-e.ctx.Done():
			return
		case msg, ok := <-transactionDecoded:
			if !ok {
				return
			}
			data, err := newEventTransactionDecoded(msg.Data())
			if err != nil {
				e.logger.Errorf("Failed to cast event data with %s", err)
				continue
			}
			if e.history != nil {
				if _, err := e.history.Put(data.Transaction); err != nil {
					e.logger.Errorf("Failed to store transaction %s with %s", data.Hash, err)
				}
			}
			publishData, err := json.Marshal(data)
			if err != nil {
				e.logger.Errorf("Failed to marshal publishing data with %s", err)
				continue
			}
			publisher.Publish(RPCEventTransactionDecoded, publishData)
		}
	}
}
