package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid"

	stringsUtil "github.com/polywrap/near-engine/pkg/collection/strings"
	"github.com/polywrap/near-engine/pkg/log"
)

var upgrader = websocket.Upgrader{}

var (
	idEntropyMutex = new(sync.Mutex)
	idEntropy      = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newConnectionID() string {
	idEntropyMutex.Lock()
	defer idEntropyMutex.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}

type wsJSONRPCServer struct {
	logger      log.Logger
	opts        Options
	httpServer  *http.Server
	mutex       *sync.Mutex
	connections map[string]*wsSocket
	invoker     Invoker
}

func NewWSJSONRPCServer(logger log.Logger, port int, addr string, invoker Invoker, opts Options) *wsJSONRPCServer {
	server := &wsJSONRPCServer{
		logger:      logger,
		opts:        opts,
		mutex:       new(sync.Mutex),
		connections: make(map[string]*wsSocket),
		invoker:     invoker,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc-ws", server.handleUpgrade)
	bindingAddr := addr
	if addr == "" {
		bindingAddr = "127.0.0.1"
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bindingAddr, port),
		Handler:           mux,
		ReadHeaderTimeout: 1 * time.Second,
	}
	server.httpServer = httpServer
	return server
}

func NewWSJSONRPCServerWithHTTPServer(logger log.Logger, invoker Invoker, mux *http.ServeMux, httpServer *http.Server, opts Options) *wsJSONRPCServer {
	server := &wsJSONRPCServer{
		logger:      logger,
		opts:        opts,
		mutex:       new(sync.Mutex),
		connections: make(map[string]*wsSocket),
		invoker:     invoker,
	}
	mux.HandleFunc("/rpc-ws", server.handleUpgrade)

	httpServer.Handler = mux
	server.httpServer = httpServer
	return server
}

func (s *wsJSONRPCServer) Publish(method string, data []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, conn := range s.connections {
		go conn.publish(method, data)
	}
}

// Connections returns the number of open connections.
func (s *wsJSONRPCServer) Connections() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.connections)
}

func (s *wsJSONRPCServer) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *wsJSONRPCServer) Close() error {
	s.mutex.Lock()
	for _, conn := range s.connections {
		conn.close()
	}
	s.mutex.Unlock()

	return s.httpServer.Close()
}

func (s *wsJSONRPCServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("Fail to upgrade connection with %s", err)
		return
	}
	if s.opts.MaxRequestSize > 0 {
		conn.SetReadLimit(s.opts.MaxRequestSize)
	}
	id := newConnectionID()
	socket := newWSSocket(s.logger.With("connection", id), conn, s.invoker, s.opts.RequestTimeout)
	s.mutex.Lock()
	s.connections[id] = socket
	s.mutex.Unlock()
	s.logger.Debugf("Accepted connection %s from %s", id, r.RemoteAddr)
	go func() {
		socket.dispatch()
		s.mutex.Lock()
		delete(s.connections, id)
		s.mutex.Unlock()
	}()
}

type wsMessage struct {
	msg *JSONRPCRequest
	// parseErr is set for messages which are not JSON RPC requests. The connection stays open.
	parseErr error
	err      error
}

type wsSendingMessage struct {
	msg *JSONRPCRequest
}

type wsSocket struct {
	logger    log.Logger
	conn      *websocket.Conn
	invoker   Invoker
	timeout   time.Duration
	receiver  chan wsMessage
	publisher chan wsSendingMessage
	closeChan chan bool
	closeOnce sync.Once
	mutex     sync.Mutex
	topics    []string
}

func newWSSocket(logger log.Logger, conn *websocket.Conn, invoker Invoker, timeout time.Duration) *wsSocket {
	return &wsSocket{
		conn:      conn,
		logger:    logger,
		invoker:   invoker,
		timeout:   timeout,
		topics:    []string{},
		receiver:  make(chan wsMessage, 1),
		publisher: make(chan wsSendingMessage),
		closeChan: make(chan bool),
	}
}

func (c *wsSocket) publish(method string, data []byte) {
	if !c.subscribed(method) {
		return
	}
	select {
	case c.publisher <- wsSendingMessage{
		msg: &JSONRPCRequest{
			JSONRPC: "2.0",
			Method:  method,
			Params:  data,
		},
	}:
	case <-c.closeChan:
	}
}

func (c *wsSocket) subscribed(method string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, topic := range c.topics {
		if strings.Contains(method, topic) {
			return true
		}
	}
	return false
}

func (c *wsSocket) dispatch() {
	defer c.conn.Close()
	go c.read()

	for {
		select {
		case <-c.closeChan:
			return
		case req := <-c.receiver:
			if req.err != nil {
				c.close()
				return
			}
			if req.parseErr != nil {
				c.write(getErrResponse(nil, req.parseErr, jsonRPCParseError))
				continue
			}
			c.handleMessage(context.Background(), req.msg)
		case broadcast := <-c.publisher:
			c.writeJSON(broadcast.msg)
		}
	}
}

func (c *wsSocket) handleMessage(ctx context.Context, req *JSONRPCRequest) {
	if err := req.Validate(); err != nil {
		c.write(getErrResponse(req.ID, err, jsonRPCInvalidRequestError))
		return
	}
	if req.Method == "subscribe" {
		if err := c.handleSubscribe(req); err != nil {
			c.write(getErrResponse(req.ID, err, jsonRPCInvalidParamError))
		} else {
			c.write(getSuccessResponse(req.ID, []byte("true")))
		}
		return
	}
	if req.Method == "unsubscribe" {
		if err := c.handleUnsubscribe(req); err != nil {
			c.write(getErrResponse(req.ID, err, jsonRPCInvalidParamError))
		} else {
			c.write(getSuccessResponse(req.ID, []byte("true")))
		}
		return
	}
	c.logger.Infof("Received request from %s for method %s", c.conn.RemoteAddr(), req.Method)
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	result, _ := handleRequest(ctx, c.invoker, req)
	c.write(result)
}

type topicParams struct {
	Topics []string `json:"topics"`
}

func (c *wsSocket) handleSubscribe(req *JSONRPCRequest) error {
	params := &topicParams{}
	if err := json.Unmarshal(req.Params, params); err != nil {
		return err
	}
	if len(params.Topics) == 0 {
		return errors.New("topics to subscribe is empty")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, topic := range params.Topics {
		if !stringsUtil.Contain(c.topics, topic) {
			c.topics = append(c.topics, topic)
		}
	}
	return nil
}

func (c *wsSocket) handleUnsubscribe(req *JSONRPCRequest) error {
	params := &topicParams{}
	if err := json.Unmarshal(req.Params, params); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	newTopics := []string{}
	for _, topic := range c.topics {
		if !stringsUtil.Contain(params.Topics, topic) {
			newTopics = append(newTopics, topic)
		}
	}
	c.topics = newTopics
	return nil
}

func (c *wsSocket) read() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Debugf("Fail to read message with %s. Closing connection with %s", err, c.conn.RemoteAddr())
			select {
			case c.receiver <- wsMessage{err: err}:
			case <-c.closeChan:
			}
			return
		}
		message := wsMessage{msg: &JSONRPCRequest{}}
		if err := json.Unmarshal(msg, message.msg); err != nil {
			c.logger.Errorf("Fail to unmarshal message with %s from %s", err, c.conn.RemoteAddr())
			message = wsMessage{parseErr: err}
		}
		select {
		case c.receiver <- message:
		case <-c.closeChan:
			return
		}
	}
}

func (c *wsSocket) writeJSON(body interface{}) {
	if err := c.conn.WriteJSON(body); err != nil {
		c.logger.Errorf("Fail to write json with %s", err)
	}
}

func (c *wsSocket) write(body []byte) {
	if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		c.logger.Errorf("Fail to write message with %s", err)
	}
}

func (c *wsSocket) close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
	})
}
