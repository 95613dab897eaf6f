// Package mapview harita sayfasının ziyaret bazlı durumunu tutar:
// filtre kriterleri, görünür sonuçlar, seçim ve viewport.
package mapview

import (
	"sync"

	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/filter"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/geo"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/selection"
)

type View struct {
	SessionID   string           `json:"session_id"`
	Criteria    filter.Criteria  `json:"criteria"`
	Count       int              `json:"count"`
	CountLabel  string           `json:"count_label"`
	Empty       bool             `json:"empty"`
	Markers     []geo.Marker     `json:"markers"`
	Clusters    []geo.Cluster    `json:"clusters"`
	Viewport    geo.Viewport     `json:"viewport"`
	Selection   selection.State  `json:"selection"`
	SidebarOpen bool             `json:"sidebar_open"`
	Selected    *models.Property `json:"selected_property,omitempty"`
}

// Session tek bir harita ziyareti. Viewport seçim koordinatörünü dinler.
type Session struct {
	ID string

	mu       sync.Mutex
	criteria filter.Criteria
	visible  []models.Property
	coord    *selection.Coordinator
	viewport geo.Viewport
	opts     geo.ClusterOptions
}

func NewSession(id string, opts geo.ClusterOptions) *Session {
	s := &Session{
		ID:       id,
		coord:    selection.NewCoordinator(),
		viewport: geo.DefaultViewport(),
		opts:     opts,
	}
	s.coord.Subscribe(s.onSelection)
	return s
}

// onSelection koordinatör kilidi dışında çağrılır; s.mu çağıran tarafından tutulur.
func (s *Session) onSelection(st selection.State) {
	if !st.Selected {
		s.viewport = s.viewport.Release()
		return
	}
	for _, p := range s.visible {
		if p.ID == st.ID {
			s.viewport = s.viewport.Focus(p.ID, p.Coordinates())
			return
		}
	}
}

// Apply kriterleri uygular; seçili kayıt sonuçlardan düştüyse seçim temizlenir.
func (s *Session) Apply(snap catalog.Snapshot, c filter.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria = c
	s.visible = filter.Apply(snap.Properties, c)
	s.coord.SetVisible(filter.IDs(s.visible))
}

func (s *Session) Criteria() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Select(id)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coord.Clear()
}

// View zoom <= 0 ise viewport zoom'u kullanılır.
func (s *Session) View(zoom int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.coord.State()
	markers := geo.Project(s.visible, st.ID)
	if zoom <= 0 {
		zoom = s.viewport.Zoom
	}

	v := View{
		SessionID:   s.ID,
		Criteria:    s.criteria,
		Count:       len(s.visible),
		CountLabel:  format.PluralizeCount(len(s.visible), "propiedad", "propiedades"),
		Empty:       len(s.visible) == 0,
		Markers:     markers,
		Clusters:    geo.ClusterMarkers(markers, zoom, s.opts),
		Viewport:    s.viewport,
		Selection:   st,
		SidebarOpen: st.Selected,
	}
	if st.Selected {
		for i := range s.visible {
			if s.visible[i].ID == st.ID {
				p := s.visible[i]
				v.Selected = &p
				break
			}
		}
	}
	return v
}
