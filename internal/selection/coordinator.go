// Package selection liste ve harita görünümleri arasında paylaşılan tekil seçimi yönetir.
package selection

import (
	"errors"
	"sync"
)

var ErrNotVisible = errors.New("property is not in the visible results")

// State: Selected=false ise Unselected.
type State struct {
	Selected bool   `json:"selected"`
	ID       string `json:"id,omitempty"`
}

func Unselected() State { return State{} }

func SelectedState(id string) State { return State{Selected: true, ID: id} }

type Listener func(State)

// Coordinator seçim durumunun tek yazarıdır; diğer her şey abone olur.
type Coordinator struct {
	mu        sync.Mutex
	state     State
	visible   map[string]struct{}
	listeners map[int]Listener
	nextID    int
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		visible:   map[string]struct{}{},
		listeners: map[int]Listener{},
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select görünür olmayan id'yi reddeder, durum değişmez.
func (c *Coordinator) Select(id string) error {
	c.mu.Lock()
	if _, ok := c.visible[id]; !ok {
		c.mu.Unlock()
		return ErrNotVisible
	}
	changed := c.set(SelectedState(id))
	c.mu.Unlock()

	c.notify(changed)
	return nil
}

func (c *Coordinator) Clear() {
	c.mu.Lock()
	changed := c.set(Unselected())
	c.mu.Unlock()

	c.notify(changed)
}

// SetVisible görünür kümeyi değiştirir; seçili id kümeden çıktıysa seçim temizlenir.
// Temizlendiyse true döner.
func (c *Coordinator) SetVisible(ids []string) bool {
	c.mu.Lock()
	visible := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		visible[id] = struct{}{}
	}
	c.visible = visible

	var changed *State
	if c.state.Selected {
		if _, ok := visible[c.state.ID]; !ok {
			changed = c.set(Unselected())
		}
	}
	c.mu.Unlock()

	c.notify(changed)
	return changed != nil
}

// Subscribe dönen fonksiyon aboneliği iptal eder.
func (c *Coordinator) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// set kilit altında çağrılır; durum değiştiyse yeni durumu döner.
func (c *Coordinator) set(next State) *State {
	if c.state == next {
		return nil
	}
	c.state = next
	return &next
}

func (c *Coordinator) notify(changed *State) {
	if changed == nil {
		return
	}
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(*changed)
	}
}
