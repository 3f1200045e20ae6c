// Package bus carries session role changes from the session service to
// whoever keeps navigation state for the session. Each instance of the
// service subscribes, so a role switch handled by one instance reaches a
// stream held open by another.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"navshell/pkg/domain"
)

// RoleChange announces the current role of a session. RoleNone means the
// session ended.
type RoleChange struct {
	SessionID domain.SessionID
	Role      domain.Role
	At        time.Time
}

type wireChange struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	At        time.Time `json:"at"`
}

// Encode serializes a change for transports.
func Encode(c RoleChange) ([]byte, error) {
	return json.Marshal(wireChange{SessionID: c.SessionID.String(), Role: c.Role.String(), At: c.At})
}

// Decode parses a change produced by Encode. Unknown roles are rejected.
func Decode(payload []byte) (RoleChange, error) {
	var w wireChange
	if err := json.Unmarshal(payload, &w); err != nil {
		return RoleChange{}, fmt.Errorf("decode role change: %w", err)
	}
	sid, err := domain.ParseSessionID(w.SessionID)
	if err != nil {
		return RoleChange{}, fmt.Errorf("decode role change: %w", err)
	}
	role := domain.RoleNone
	if w.Role != "" {
		if role, err = domain.ParseRole(w.Role); err != nil {
			return RoleChange{}, fmt.Errorf("decode role change: %w", err)
		}
	}
	return RoleChange{SessionID: sid, Role: role, At: w.At}, nil
}

// Bus publishes and fans out role changes.
type Bus interface {
	Publish(ctx context.Context, change RoleChange) error
	// Subscribe delivers changes until ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan RoleChange, error)
}

type memorySub struct {
	ch   chan RoleChange
	done <-chan struct{}
}

// Memory is an in-process Bus. Publish blocks until every live subscriber
// has accepted the change, so subscribers observe changes in publish order.
type Memory struct {
	mu     sync.RWMutex
	subs   map[int]*memorySub
	nextID int
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]*memorySub)}
}

func (m *Memory) Publish(ctx context.Context, change RoleChange) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subs {
		select {
		case sub.ch <- change:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan RoleChange, error) {
	sub := &memorySub{ch: make(chan RoleChange, 64), done: ctx.Done()}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = sub
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(sub.ch)
		m.mu.Unlock()
	}()
	return sub.ch, nil
}
