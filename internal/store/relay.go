package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const relayWriteWait = 10 * time.Second

type wireRequest struct {
	Op     string                     `json:"op"`
	ID     uint64                     `json:"id,omitempty"`
	Sub    uint64                     `json:"sub,omitempty"`
	Path   string                     `json:"path,omitempty"`
	Value  json.RawMessage            `json:"value,omitempty"`
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
}

type wireResponse struct {
	Type  string          `json:"type"`
	ID    uint64          `json:"id,omitempty"`
	Sub   uint64          `json:"sub,omitempty"`
	Found bool            `json:"found,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Relay is a Store backed by a relay server over a websocket. Mutations are
// sent without waiting for acknowledgement; only Get blocks on the reply.
type Relay struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	nextSub uint64
	pending map[uint64]chan wireResponse
	subs    map[uint64]*relaySub
	closed  bool
	readErr error
	done    chan struct{}
}

// DialRelay connects to a relay server, e.g. ws://host:port/store.
func DialRelay(ctx context.Context, url string) (*Relay, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("store: dial relay: %w", err)
	}
	r := &Relay{
		conn:    conn,
		pending: make(map[uint64]chan wireResponse),
		subs:    make(map[uint64]*relaySub),
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

type relaySub struct {
	relay *Relay
	id    uint64
	fn    SubscriptionFunc
}

func (s *relaySub) Cancel() {
	s.relay.mu.Lock()
	_, ok := s.relay.subs[s.id]
	delete(s.relay.subs, s.id)
	s.relay.mu.Unlock()
	if ok {
		_ = s.relay.send(wireRequest{Op: "unsubscribe", Sub: s.id})
	}
}

func (r *Relay) readLoop() {
	defer close(r.done)
	for {
		var resp wireResponse
		if err := r.conn.ReadJSON(&resp); err != nil {
			r.failPending(err)
			return
		}
		switch resp.Type {
		case "ack":
			r.mu.Lock()
			ch, ok := r.pending[resp.ID]
			delete(r.pending, resp.ID)
			r.mu.Unlock()
			if ok {
				ch <- resp
			}
		case "value":
			r.mu.Lock()
			sub, ok := r.subs[resp.Sub]
			r.mu.Unlock()
			if ok {
				sub.fn(resp.Value)
			}
		}
	}
}

func (r *Relay) failPending(err error) {
	r.mu.Lock()
	r.readErr = err
	pending := r.pending
	r.pending = make(map[uint64]chan wireResponse)
	r.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

func (r *Relay) send(req wireRequest) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.conn.SetWriteDeadline(time.Now().Add(relayWriteWait))
	if err := r.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("store: relay write: %w", err)
	}
	return nil
}

// call sends a request that expects an acknowledgement and waits for it.
func (r *Relay) call(ctx context.Context, req wireRequest) (wireResponse, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return wireResponse{}, ErrClosed
	}
	r.nextID++
	req.ID = r.nextID
	ch := make(chan wireResponse, 1)
	r.pending[req.ID] = ch
	r.mu.Unlock()

	if err := r.send(req); err != nil {
		r.mu.Lock()
		delete(r.pending, req.ID)
		r.mu.Unlock()
		return wireResponse{}, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return wireResponse{}, fmt.Errorf("store: relay connection lost")
		}
		if resp.Error != "" {
			return wireResponse{}, fmt.Errorf("store: relay: %s", resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		r.mu.Lock()
		delete(r.pending, req.ID)
		r.mu.Unlock()
		return wireResponse{}, ctx.Err()
	}
}

func (r *Relay) Get(ctx context.Context, path string, out any) (bool, error) {
	resp, err := r.call(ctx, wireRequest{Op: "get", Path: path})
	if err != nil {
		return false, err
	}
	if !resp.Found {
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(resp.Value, out); err != nil {
			return true, fmt.Errorf("store: decode subtree %q: %w", path, err)
		}
	}
	return true, nil
}

func (r *Relay) Set(_ context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal value: %w", err)
	}
	return r.send(wireRequest{Op: "set", Path: path, Value: data})
}

func (r *Relay) Update(_ context.Context, path string, fields map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("store: marshal field %q: %w", key, err)
		}
		encoded[key] = data
	}
	return r.send(wireRequest{Op: "update", Path: path, Fields: encoded})
}

func (r *Relay) Remove(_ context.Context, path string) error {
	return r.send(wireRequest{Op: "remove", Path: path})
}

func (r *Relay) Subscribe(path string, fn SubscriptionFunc) (Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("store: nil subscription callback")
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.nextSub++
	sub := &relaySub{relay: r, id: r.nextSub, fn: fn}
	r.subs[sub.id] = sub
	r.mu.Unlock()

	if err := r.send(wireRequest{Op: "subscribe", Sub: sub.id, Path: path}); err != nil {
		sub.Cancel()
		return nil, err
	}
	return sub, nil
}

func (r *Relay) OnDisconnect(path string) error {
	return r.send(wireRequest{Op: "ondisconnect", Path: path})
}

func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.conn.Close()
	<-r.done
	return err
}
