package store

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RelayServer fans a shared Memory tree out to websocket clients. Each
// connection gets its own disconnect-hook scope, so a dropped client cleans
// up the records it asked the server to watch.
type RelayServer struct {
	mem      *Memory
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func NewRelayServer(mem *Memory, logger *log.Logger) *RelayServer {
	if mem == nil {
		mem = NewMemory()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RelayServer{
		mem: mem,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *RelayServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("relay upgrade failed: %v", err)
		return
	}
	client := &relayConn{
		server: s,
		conn:   conn,
		handle: s.mem.Client().(*memoryClient),
		subs:   make(map[uint64]Subscription),
	}
	client.run()
}

type relayConn struct {
	server  *RelayServer
	conn    *websocket.Conn
	handle  *memoryClient
	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[uint64]Subscription
	gone bool
}

func (c *relayConn) run() {
	defer c.teardown()
	for {
		var req wireRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		c.process(req)
	}
}

func (c *relayConn) teardown() {
	c.mu.Lock()
	c.gone = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	_ = c.handle.Close()
	_ = c.conn.Close()
}

func (c *relayConn) process(req wireRequest) {
	ctx := context.Background()
	switch req.Op {
	case "get":
		var value json.RawMessage
		found, err := c.handle.Get(ctx, req.Path, &value)
		resp := wireResponse{Type: "ack", ID: req.ID, Found: found, Value: value}
		if err != nil {
			resp.Error = err.Error()
		}
		c.write(resp)
	case "set":
		if err := c.handle.Set(ctx, req.Path, req.Value); err != nil {
			c.server.logger.Printf("relay set %s: %v", req.Path, err)
		}
	case "update":
		fields := make(map[string]any, len(req.Fields))
		for key, value := range req.Fields {
			fields[key] = value
		}
		if err := c.handle.Update(ctx, req.Path, fields); err != nil {
			c.server.logger.Printf("relay update %s: %v", req.Path, err)
		}
	case "remove":
		if err := c.handle.Remove(ctx, req.Path); err != nil {
			c.server.logger.Printf("relay remove %s: %v", req.Path, err)
		}
	case "subscribe":
		subID := req.Sub
		sub, err := c.handle.Subscribe(req.Path, func(value json.RawMessage) {
			c.write(wireResponse{Type: "value", Sub: subID, Value: value})
		})
		if err != nil {
			c.server.logger.Printf("relay subscribe %s: %v", req.Path, err)
			return
		}
		c.mu.Lock()
		if c.gone {
			c.mu.Unlock()
			sub.Cancel()
			return
		}
		c.subs[subID] = sub
		c.mu.Unlock()
	case "unsubscribe":
		c.mu.Lock()
		sub, ok := c.subs[req.Sub]
		delete(c.subs, req.Sub)
		c.mu.Unlock()
		if ok {
			sub.Cancel()
		}
	case "ondisconnect":
		if err := c.handle.OnDisconnect(req.Path); err != nil {
			c.server.logger.Printf("relay ondisconnect %s: %v", req.Path, err)
		}
	default:
		c.server.logger.Printf("relay unknown op %q", req.Op)
	}
}

func (c *relayConn) write(resp wireResponse) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(relayWriteWait))
	if err := c.conn.WriteJSON(resp); err != nil {
		c.server.logger.Printf("relay write failed: %v", err)
	}
}
