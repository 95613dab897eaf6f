package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"

	"github.com/karlseguin/ccache/v3"
	"golang.org/x/sync/singleflight"
)

const snapshotKey = "catalog:snapshot"

var ErrRefreshFailed = errors.New("catalog refresh failed")

// Source herkese açık sayfaların okuduğu katalog.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Invalidate()
}

// Loader uzak depodan tüm ilanları getirir.
type Loader func(ctx context.Context) ([]models.Property, error)

// RemoteCache birden çok instance arasında paylaşılan ikinci seviye önbellek.
type RemoteCache interface {
	Get() ([]models.Property, bool)
	Set(props []models.Property)
	Delete()
}

// StaticSource gömülü konfigürasyondan, bir kez yüklenen katalog.
type StaticSource struct {
	snap Snapshot
}

func NewStaticSource(s Snapshot) *StaticSource {
	return &StaticSource{snap: s}
}

func (s *StaticSource) Snapshot(context.Context) (Snapshot, error) {
	return s.snap, nil
}

func (s *StaticSource) Invalidate() {}

// Cache depo kaynaklı katalog. Yenileme başarısız olursa son sağlam snapshot sunulur.
type Cache struct {
	base   Snapshot
	load   Loader
	ttl    time.Duration
	wait   time.Duration
	items  *ccache.Cache[Snapshot]
	remote RemoteCache
	log    logger.Logger
	group  singleflight.Group

	mu         sync.Mutex
	generation uint64
	lastGood   *Snapshot
}

type CacheOptions struct {
	TTL time.Duration
	// LoadTimeout tek bir yüklemenin üst süresi; bekleyen isteklerden bağımsızdır.
	LoadTimeout time.Duration
	Remote      RemoteCache
	Logger      logger.Logger
}

// NewCache base'in lokasyon ve yorumlarını kullanır, ilanları load'dan alır.
func NewCache(base Snapshot, load Loader, opts CacheOptions) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return &Cache{
		base:   base,
		load:   load,
		ttl:    opts.TTL,
		wait:   opts.LoadTimeout,
		items:  ccache.New(ccache.Configure[Snapshot]().MaxSize(4)),
		remote: opts.Remote,
		log:    opts.Logger,
	}
}

func (c *Cache) Snapshot(ctx context.Context) (Snapshot, error) {
	if item := c.items.Get(snapshotKey); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	// Yükleme tek bir isteğe bağlı değildir; iptal eden çağıran yalnızca kendisi döner.
	ch := c.group.DoChan(snapshotKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.wait)
		defer cancel()
		return c.refresh(loadCtx)
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return c.fallback(res.Err)
		}
		return res.Val.(Snapshot), nil
	}
}

func (c *Cache) refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	if c.remote != nil {
		if props, ok := c.remote.Get(); ok {
			snap := c.build(props)
			c.store(gen, snap)
			metrics.CatalogRefreshTotal.WithLabelValues("remote_hit").Inc()
			return snap, nil
		}
	}

	props, err := c.load(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// süre aşıldı, geç gelen sonuç uygulanmaz
		metrics.CatalogRefreshTotal.WithLabelValues("abandoned").Inc()
		return Snapshot{}, fmt.Errorf("%w: %w", ErrRefreshFailed, ctxErr)
	}
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	snap := c.build(props)
	if c.store(gen, snap) && c.remote != nil {
		c.remote.Set(snap.Properties)
	}
	metrics.CatalogRefreshTotal.WithLabelValues("success").Inc()
	return snap, nil
}

// store araya Invalidate girdiyse sonucu önbelleğe yazmaz.
func (c *Cache) store(gen uint64, snap Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.items.Set(snapshotKey, snap, c.ttl)
	c.lastGood = &snap
	return true
}

func (c *Cache) fallback(err error) (Snapshot, error) {
	c.mu.Lock()
	last := c.lastGood
	c.mu.Unlock()

	if last == nil {
		return Snapshot{}, err
	}
	c.log.WithError(err).Warn("catalog refresh failed, serving last known-good snapshot", map[string]interface{}{
		"loaded_at": last.LoadedAt,
	})
	return *last, nil
}

// build lokasyonu bilinmeyen veya geçersiz kayıtları atar.
func (c *Cache) build(props []models.Property) Snapshot {
	kept := make([]models.Property, 0, len(props))
	for _, p := range props {
		if err := p.Validate(); err != nil {
			c.log.Warn("dropping invalid property from catalog", map[string]interface{}{"property_id": p.ID, "error": err.Error()})
			continue
		}
		if !HasLocation(c.base.Locations, p.Location) {
			c.log.Warn("dropping property with unknown location", map[string]interface{}{"property_id": p.ID, "location": p.Location})
			continue
		}
		kept = append(kept, p)
	}
	return Snapshot{
		Properties:   kept,
		Locations:    c.base.Locations,
		Testimonials: c.base.Testimonials,
		LoadedAt:     time.Now(),
	}
}

// Invalidate bir sonraki okumada yeniden yüklemeyi zorlar.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	c.items.Delete(snapshotKey)
	if c.remote != nil {
		c.remote.Delete()
	}
}

func (c *Cache) Stop() {
	c.items.Stop()
}
