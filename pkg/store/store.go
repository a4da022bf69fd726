// Package store archives solved layouts so they can be fetched by id later.
//
// The HTTP service writes every layout produced by POST /v1/layouts through a
// [Store] and serves it back from GET /v1/layouts/{id}. [Memory] is used in
// tests and when no database is configured; [Mongo] keeps layouts in a
// MongoDB collection keyed by layout id.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/matzehuels/boxlayout/pkg/graph"
)

// ErrNotFound is returned when no layout has the requested id.
var ErrNotFound = errors.New("layout not found")

// Store persists solved layouts.
type Store interface {
	// Save inserts or replaces l under l.ID.
	Save(ctx context.Context, l graph.Layout) error
	// Load returns the layout with id, or ErrNotFound.
	Load(ctx context.Context, id string) (graph.Layout, error)
	// Delete removes id. Deleting a missing id returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Recent lists up to limit layouts, newest first.
	Recent(ctx context.Context, limit int) ([]graph.Layout, error)
	Close(ctx context.Context) error
}

// Memory is a Store backed by a map.
type Memory struct {
	mu      sync.RWMutex
	layouts map[string]graph.Layout
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{layouts: make(map[string]graph.Layout)}
}

func (m *Memory) Save(ctx context.Context, l graph.Layout) error {
	if l.ID == "" {
		return errors.New("layout has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[l.ID] = l
	return nil
}

func (m *Memory) Load(ctx context.Context, id string) (graph.Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.layouts[id]
	if !ok {
		return graph.Layout{}, ErrNotFound
	}
	return l, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layouts[id]; !ok {
		return ErrNotFound
	}
	delete(m.layouts, id)
	return nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]graph.Layout, error) {
	m.mu.RLock()
	out := make([]graph.Layout, 0, len(m.layouts))
	for _, l := range m.layouts {
		out = append(out, l)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close(ctx context.Context) error { return nil }

var _ Store = (*Memory)(nil)
