// Package router provides request routing logic for JSON RPC server [pkg/github.com/polywrap/near-engine/pkg/rpc].
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/log"
	"github.com/polywrap/near-engine/pkg/rpc"
)

const (
	delimitor = "_"
	// subscriberBuffer is the number of events kept for a slow subscriber before dropping.
	subscriberBuffer = 64
)

func NewEndpointRequest(
	context context.Context,
	logger log.Logger,
	jsonData []byte,
) *EndpointRequest {
	return &EndpointRequest{
		context: context,
		logger:  logger,
		params:  jsonData,
	}
}

type EndpointResponseWriter = rpc.EndpointResponseWriter

type EndpointRequest struct {
	context context.Context
	logger  log.Logger
	params  []byte
}

func (a *EndpointRequest) Logger() log.Logger {
	return a.logger
}

func (a *EndpointRequest) Context() context.Context {
	return a.context
}

func (a *EndpointRequest) Params() []byte {
	return a.params
}

type NotFoundHandler func(namespace, method string, w EndpointResponseWriter, r *EndpointRequest)
type EndpointHandler func(w EndpointResponseWriter, r *EndpointRequest)
type EndpointHandlers map[string]EndpointHandler

// Endpoint is a group of handlers registered under one namespace.
type Endpoint interface {
	Namespace() string
	Get() EndpointHandlers
}

type Router struct {
	mutex           *sync.RWMutex
	logger          log.Logger
	endpoints       map[string]map[string]EndpointHandler
	events          map[string]map[string][]chan rpc.EventContent
	notfoundHandler NotFoundHandler
}

func NewRouter(logger log.Logger) *Router {
	return &Router{
		mutex:     new(sync.RWMutex),
		logger:    logger,
		endpoints: map[string]map[string]EndpointHandler{},
		events:    map[string]map[string][]chan rpc.EventContent{},
	}
}

func (b *Router) RegisterEndpoint(namespace, method string, handler EndpointHandler) error {
	if namespace == "" || method == "" || strings.Contains(namespace, delimitor) || strings.Contains(method, delimitor) {
		return fmt.Errorf("endpoint %s at %s has invalid name", method, namespace)
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, pathExist := b.endpoints[namespace]
	if !pathExist {
		b.endpoints[namespace] = map[string]EndpointHandler{}
	}
	_, actionExist := b.endpoints[namespace][method]
	if actionExist {
		return fmt.Errorf("endpoint %s at %s is already registered", method, namespace)
	}
	b.endpoints[namespace][method] = handler
	return nil
}

// RegisterEndpoints registers every handler of the endpoint group.
func (b *Router) RegisterEndpoints(endpoint Endpoint) error {
	for method, handler := range endpoint.Get() {
		if err := b.RegisterEndpoint(endpoint.Namespace(), method, handler); err != nil {
			return err
		}
	}
	return nil
}

func (b *Router) RegisterNotFoundHandler(handler NotFoundHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.notfoundHandler = handler
}

func (b *Router) RegisterEvents(namespace, event string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, pathExist := b.events[namespace]
	if !pathExist {
		b.events[namespace] = map[string][]chan rpc.EventContent{}
	}
	_, actionExist := b.events[namespace][event]
	if actionExist {
		return fmt.Errorf("event %s at %s is already registered", event, namespace)
	}
	b.events[namespace][event] = []chan rpc.EventContent{}
	return nil
}

// Endpoints returns all registered endpoint names.
func (b *Router) Endpoints() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	result := []string{}
	for namespace, methods := range b.endpoints {
		for method := range methods {
			result = append(result, namespace+delimitor+method)
		}
	}
	return result
}

func (b *Router) Invoke(ctx context.Context, endpoint string, data []byte) rpc.EndpointResponse {
	path, target, err := splitTarget(endpoint)
	if err != nil {
		return rpc.NewEndpointResponse(nil, fmt.Errorf("%w: %s", rpc.ErrMethodNotFound, err.Error()))
	}
	b.mutex.RLock()
	handler, exist := b.endpoints[path][target]
	notFound := b.notfoundHandler
	b.mutex.RUnlock()

	resp := rpc.NewEndpointResponseWriter()
	req := &EndpointRequest{
		context: ctx,
		logger:  b.logger.With("endpoint", endpoint),
		params:  data,
	}
	if !exist {
		if notFound == nil {
			return rpc.NewEndpointResponse(nil, fmt.Errorf("%w: endpoint %s at %s does not exist", rpc.ErrMethodNotFound, target, path))
		}
		handler = func(w EndpointResponseWriter, r *EndpointRequest) {
			notFound(path, target, w, r)
		}
	}
	r := make(chan bool)
	go func() {
		defer close(r)
		defer func() {
			if recovered := recover(); recovered != nil {
				b.logger.Errorf("Endpoint %s panicked with %v", endpoint, recovered)
				resp.Error(fmt.Errorf("endpoint %s at %s failed unexpectedly", target, path))
			}
		}()
		handler(resp, req)
	}()
	select {
	case <-r:
		return resp.Result()
	case <-ctx.Done():
		return rpc.NewEndpointResponse(nil, fmt.Errorf("failed on endpoint %s at %s: %w", target, path, ctx.Err()))
	}
}

// Subscribe returns channel receiving the event. Returns nil for invalid event name.
func (b *Router) Subscribe(event string) chan rpc.EventContent {
	path, target, err := splitTarget(event)
	if err != nil {
		return nil
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, pathExist := b.events[path]
	if !pathExist {
		b.events[path] = map[string][]chan rpc.EventContent{}
	}
	_, methodExist := b.events[path][target]
	if !methodExist {
		b.events[path][target] = []chan rpc.EventContent{}
	}
	subscriber := make(chan rpc.EventContent, subscriberBuffer)
	b.events[path][target] = append(b.events[path][target], subscriber)
	return subscriber
}

// Publish sends the event to all subscribers. Subscribers with a full buffer miss the event.
func (b *Router) Publish(event string, data codec.Encodable) error {
	path, target, err := splitTarget(event)
	if err != nil {
		return err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	events, exist := b.events[path][target]
	if !exist {
		return fmt.Errorf("event %s at %s does not exist", target, path)
	}
	for _, e := range events {
		select {
		case e <- rpc.NewEventContent(event, data):
		default:
			b.logger.Warningf("Dropping event %s for slow subscriber", event)
		}
	}
	return nil
}

func (b *Router) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, path := range b.events {
		for name, channels := range path {
			for _, c := range channels {
				close(c)
			}
			path[name] = nil
		}
	}
}

func splitTarget(target string) (string, string, error) {
	res := strings.Split(target, delimitor)
	if len(res) != 2 || res[0] == "" || res[1] == "" {
		return "", "", fmt.Errorf("endpoint or event path %s is not valid. Format should be XXX_YYY", target)
	}
	return res[0], res[1], nil
}
