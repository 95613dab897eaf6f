package catalog

import (
	"encoding/json"
	"errors"
	"time"

	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"

	"github.com/bradfitz/gomemcache/memcache"
)

const memcacheKey = "catalog:properties"

// MemcacheStore katalog ilanlarını instance'lar arasında paylaşır.
type MemcacheStore struct {
	client *memcache.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewMemcacheStore(servers []string, ttl time.Duration, log logger.Logger) *MemcacheStore {
	return &MemcacheStore{
		client: memcache.New(servers...),
		ttl:    ttl,
		log:    log,
	}
}

func (m *MemcacheStore) Get() ([]models.Property, bool) {
	item, err := m.client.Get(memcacheKey)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			m.log.WithError(err).Warn("memcache get failed", nil)
		}
		return nil, false
	}
	var props []models.Property
	if err := json.Unmarshal(item.Value, &props); err != nil {
		m.log.WithError(err).Warn("memcache payload unreadable", nil)
		return nil, false
	}
	return props, true
}

func (m *MemcacheStore) Set(props []models.Property) {
	data, err := json.Marshal(props)
	if err != nil {
		m.log.WithError(err).Warn("catalog marshal failed", nil)
		return
	}
	if err := m.client.Set(&memcache.Item{
		Key:        memcacheKey,
		Value:      data,
		Expiration: int32(m.ttl / time.Second),
	}); err != nil {
		m.log.WithError(err).Warn("memcache set failed", nil)
	}
}

func (m *MemcacheStore) Delete() {
	if err := m.client.Delete(memcacheKey); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		m.log.WithError(err).Warn("memcache delete failed", nil)
	}
}
