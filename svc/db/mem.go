package db

import (
	"context"
	"sync"

	"pastebox/pkg/domain"
)

// Mem is the in-memory paste table. It owns every stored paste: values go in by copy and come
// out by copy, so callers can never mutate stored state. Nothing is evicted and nothing survives
// a restart.
type Mem struct {
	mu     sync.RWMutex
	pastes map[string]*domain.Paste
}

func NewMem() *Mem {
	return &Mem{pastes: make(map[string]*domain.Paste)}
}

// Insert stores p under p.ID unless the id is taken, in which case it returns false and leaves
// the existing paste untouched.
func (m *Mem) Insert(ctx context.Context, p domain.Paste) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.pastes[p.ID]; taken {
		return false, nil
	}
	m.pastes[p.ID] = &p
	return true, nil
}

// IncrViews bumps the view counter and returns the paste as it is after the increment.
func (m *Mem) IncrViews(ctx context.Context, id string) (domain.Paste, error) {
	if err := ctx.Err(); err != nil {
		return domain.Paste{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pastes[id]
	if !ok {
		return domain.Paste{}, domain.ErrPasteNotFound
	}
	p.Views++
	return *p, nil
}

func (m *Mem) Content(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pastes[id]
	if !ok {
		return "", domain.ErrPasteNotFound
	}
	return p.Content, nil
}

func (m *Mem) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pastes)
}
