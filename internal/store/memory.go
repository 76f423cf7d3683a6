package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-process Store. The tree holds JSON-normalized values:
// objects are map[string]any, everything else is a leaf. All clients sharing
// one Memory observe each other's writes, which makes it the store of choice
// for tests and single-process bots.
type Memory struct {
	mu      sync.Mutex
	root    map[string]any
	subs    map[uint64]*memorySub
	nextSub uint64
}

func NewMemory() *Memory {
	return &Memory{
		root: make(map[string]any),
		subs: make(map[uint64]*memorySub),
	}
}

type memorySub struct {
	owner    *Memory
	id       uint64
	segments []string
	fn       SubscriptionFunc
}

func (s *memorySub) Cancel() {
	s.owner.mu.Lock()
	delete(s.owner.subs, s.id)
	s.owner.mu.Unlock()
}

// Client returns a handle whose OnDisconnect hooks run when the handle is
// closed, independent of every other handle on the same tree.
func (m *Memory) Client() Store {
	return &memoryClient{mem: m}
}

type memoryClient struct {
	mem    *Memory
	mu     sync.Mutex
	hooks  []string
	closed bool
}

func (c *memoryClient) Get(ctx context.Context, path string, out any) (bool, error) {
	return c.mem.Get(ctx, path, out)
}

func (c *memoryClient) Set(ctx context.Context, path string, value any) error {
	return c.mem.Set(ctx, path, value)
}

func (c *memoryClient) Update(ctx context.Context, path string, fields map[string]any) error {
	return c.mem.Update(ctx, path, fields)
}

func (c *memoryClient) Remove(ctx context.Context, path string) error {
	return c.mem.Remove(ctx, path)
}

func (c *memoryClient) Subscribe(path string, fn SubscriptionFunc) (Subscription, error) {
	return c.mem.Subscribe(path, fn)
}

func (c *memoryClient) OnDisconnect(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.hooks = append(c.hooks, path)
	return nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	for _, path := range hooks {
		_ = c.mem.Remove(context.Background(), path)
	}
	return nil
}

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("store: malformed path %q", path)
		}
	}
	return segments, nil
}

// normalize round-trips a value through JSON so the tree only ever holds
// map[string]any, []any, and scalar leaves.
func normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("store: marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: normalize value: %w", err)
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, path string, out any) (bool, error) {
	segments, err := splitPath(path)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	value, ok := lookup(m.root, segments)
	var data []byte
	if ok {
		data, err = json.Marshal(value)
	}
	m.mu.Unlock()

	if err != nil {
		return false, fmt.Errorf("store: marshal subtree %q: %w", path, err)
	}
	if !ok {
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return true, fmt.Errorf("store: decode subtree %q: %w", path, err)
		}
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	writeNode(m.root, segments, normalized)
	notifications := m.collectLocked(segments)
	m.mu.Unlock()

	dispatch(notifications)
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	type write struct {
		segments []string
		value    any
	}
	writes := make([]write, 0, len(fields))
	for key, value := range fields {
		rel, err := splitPath(key)
		if err != nil {
			return err
		}
		normalized, err := normalize(value)
		if err != nil {
			return err
		}
		writes = append(writes, write{segments: append(append([]string{}, segments...), rel...), value: normalized})
	}

	m.mu.Lock()
	for _, w := range writes {
		if w.value == nil {
			removeNode(m.root, w.segments)
		} else {
			writeNode(m.root, w.segments, w.value)
		}
	}
	notifications := m.collectLocked(segments)
	m.mu.Unlock()

	dispatch(notifications)
	return nil
}

func (m *Memory) Remove(_ context.Context, path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	removeNode(m.root, segments)
	notifications := m.collectLocked(segments)
	m.mu.Unlock()

	dispatch(notifications)
	return nil
}

func (m *Memory) Subscribe(path string, fn SubscriptionFunc) (Subscription, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("store: nil subscription callback")
	}

	m.mu.Lock()
	m.nextSub++
	sub := &memorySub{owner: m, id: m.nextSub, segments: segments, fn: fn}
	m.subs[sub.id] = sub
	initial := marshalSubtree(m.root, segments)
	m.mu.Unlock()

	fn(initial)
	return sub, nil
}

// OnDisconnect on the shared tree itself runs the hook at Close; sessions
// normally use Client() for a per-connection hook scope.
func (m *Memory) OnDisconnect(path string) error {
	_, err := splitPath(path)
	return err
}

func (m *Memory) Close() error { return nil }

type notification struct {
	fn    SubscriptionFunc
	value json.RawMessage
}

// collectLocked gathers callbacks affected by a change at segments: every
// subscription whose path contains, or is contained by, the changed path.
func (m *Memory) collectLocked(segments []string) []notification {
	var out []notification
	for _, sub := range m.subs {
		if !pathsOverlap(sub.segments, segments) {
			continue
		}
		out = append(out, notification{fn: sub.fn, value: marshalSubtree(m.root, sub.segments)})
	}
	return out
}

func dispatch(notifications []notification) {
	for _, n := range notifications {
		n.fn(n.value)
	}
}

func pathsOverlap(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lookup(root map[string]any, segments []string) (any, bool) {
	var current any = root
	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func marshalSubtree(root map[string]any, segments []string) json.RawMessage {
	value, ok := lookup(root, segments)
	if !ok {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return data
}

func writeNode(root map[string]any, segments []string, value any) {
	parent := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			parent[seg] = child
		}
		parent = child
	}
	parent[segments[len(segments)-1]] = value
}

// removeNode deletes the subtree and prunes parents left empty, mirroring
// the backend the schema was written against.
func removeNode(root map[string]any, segments []string) {
	parents := make([]map[string]any, 0, len(segments))
	parent := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			return
		}
		parents = append(parents, parent)
		parent = child
	}
	delete(parent, segments[len(segments)-1])

	for i := len(parents) - 1; i >= 0; i-- {
		if len(parent) != 0 {
			break
		}
		delete(parents[i], segments[i])
		parent = parents[i]
	}
}
