// Package target abstracts the page containers that sections render into and
// the stores that keep rendered fragments for serving.
package target

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reinarrr/TLR-web-cfpages/internal/logging"
)

// Target is a single named container.
type Target interface {
	SetContent(content string)
}

// Surface resolves container IDs to targets. A missing container is reported
// with ok == false and callers treat that as a no-op.
type Surface interface {
	Target(id string) (Target, bool)
}

// Store keeps the rendered fragments of every page.
type Store interface {
	// Publish replaces the fragments of a page. Containers absent from
	// fragments are removed.
	Publish(ctx context.Context, page string, fragments map[string]string) error
	// SetFragment updates a single container in place.
	SetFragment(ctx context.Context, page, container, content string) error
	Fragments(ctx context.Context, page string) (map[string]string, error)
	Pages(ctx context.Context) ([]string, error)
}

// Memory is a Surface over a fixed set of declared containers.
type Memory struct {
	mu       sync.RWMutex
	declared map[string]struct{}
	content  map[string]string
}

func NewMemory(containers ...string) *Memory {
	m := &Memory{
		declared: make(map[string]struct{}, len(containers)),
		content:  make(map[string]string, len(containers)),
	}
	for _, c := range containers {
		m.declared[c] = struct{}{}
	}
	return m
}

func (m *Memory) Target(id string) (Target, bool) {
	if _, ok := m.declared[id]; !ok {
		return nil, false
	}
	return memoryTarget{m: m, id: id}, true
}

// Has reports whether the container was declared.
func (m *Memory) Has(id string) bool {
	_, ok := m.declared[id]
	return ok
}

// Content returns the current content of a container.
func (m *Memory) Content(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.content[id]
	return c, ok
}

// Snapshot copies every container that has been written.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.content))
	for k, v := range m.content {
		out[k] = v
	}
	return out
}

type memoryTarget struct {
	m  *Memory
	id string
}

func (t memoryTarget) SetContent(content string) {
	t.m.mu.Lock()
	t.m.content[t.id] = content
	t.m.mu.Unlock()
}

// StoreSurface writes every SetContent straight through to a Store. It is
// meant for long-lived writers such as the live status clock.
type StoreSurface struct {
	Store      Store
	Page       string
	Containers []string
	Logger     zerolog.Logger
}

func (s *StoreSurface) Target(id string) (Target, bool) {
	for _, c := range s.Containers {
		if c == id {
			return storeTarget{s: s, id: id}, true
		}
	}
	return nil, false
}

type storeTarget struct {
	s  *StoreSurface
	id string
}

func (t storeTarget) SetContent(content string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()
	if err := t.s.Store.SetFragment(ctx, t.s.Page, t.id, content); err != nil {
		t.s.Logger.Warn().Err(err).Str(logging.FieldPage, t.s.Page).Str(logging.FieldContainer, t.id).Msg("store write failed")
	}
}

// MemoryStore is the in-process Store used when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: map[string]map[string]string{}}
}

func (s *MemoryStore) Publish(_ context.Context, page string, fragments map[string]string) error {
	cp := make(map[string]string, len(fragments))
	for k, v := range fragments {
		cp[k] = v
	}
	s.mu.Lock()
	s.pages[page] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetFragment(_ context.Context, page, container, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[page]
	if !ok {
		p = map[string]string{}
		s.pages[page] = p
	}
	p[container] = content
	return nil
}

func (s *MemoryStore) Fragments(_ context.Context, page string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[page]
	if !ok {
		return nil, nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Pages(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pages))
	for p := range s.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
