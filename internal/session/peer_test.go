package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// fakePeer records every message it is sent
type fakePeer struct {
	mu       sync.Mutex
	messages []map[string]any
	full     bool
	closed   bool
}

func (p *fakePeer) Send(msg []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.full {
		return false
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg, &decoded); err != nil {
		panic(err)
	}
	p.messages = append(p.messages, decoded)
	return true
}

func (p *fakePeer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) all() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]map[string]any, len(p.messages))
	copy(out, p.messages)
	return out
}

func (p *fakePeer) ofType(t string) []map[string]any {
	var out []map[string]any
	for _, m := range p.all() {
		if m["type"] == t {
			out = append(out, m)
		}
	}
	return out
}

func (p *fakePeer) last() map[string]any {
	all := p.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func (p *fakePeer) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
}

// cancellingPeer cancels the caller's context on its first send
type cancellingPeer struct {
	*fakePeer
	cancel context.CancelFunc
}

func (p *cancellingPeer) Send(msg []byte) bool {
	p.cancel()
	time.Sleep(10 * time.Millisecond)
	return p.fakePeer.Send(msg)
}
