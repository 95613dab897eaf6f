package catalog

import (
	"errors"
	"sync"
)

var ErrMutationInFlight = errors.New("a mutation for this property is already in flight")

// Guard aynı kayıt için ikinci bir değişikliği, ilki bitene kadar engeller.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: map[string]struct{}{}}
}

// Acquire başarılıysa dönen release mutlaka çağrılmalı.
func (g *Guard) Acquire(id string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[id]; busy {
		return nil, ErrMutationInFlight
	}
	g.inflight[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, id)
			g.mu.Unlock()
		})
	}, nil
}
