package mapview

import (
	"time"

	"inmobiliaria-backend/internal/geo"
	"inmobiliaria-backend/internal/metrics"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
)

// Store oturumları kayan TTL ile bellekte tutar.
type Store struct {
	items *ccache.Cache[*Session]
	ttl   time.Duration
	opts  geo.ClusterOptions
}

func NewStore(ttl time.Duration, opts geo.ClusterOptions) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		items: ccache.New(ccache.Configure[*Session]().MaxSize(10000)),
		ttl:   ttl,
		opts:  opts,
	}
}

// Get id boş, bilinmiyor veya süresi dolmuşsa yeni oturum açar.
func (s *Store) Get(id string) *Session {
	if id != "" {
		if item := s.items.Get(id); item != nil && !item.Expired() {
			item.Extend(s.ttl)
			return item.Value()
		}
	}
	sess := NewSession(uuid.NewString(), s.opts)
	s.items.Set(sess.ID, sess, s.ttl)
	metrics.MapSessionsActive.Set(float64(s.items.ItemCount()))
	return sess
}

func (s *Store) Len() int {
	return s.items.ItemCount()
}

func (s *Store) Stop() {
	s.items.Stop()
}
