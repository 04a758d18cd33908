package cache

import (
	"fmt"
	"time"
)

// DocumentCache stores provider responses for case-law documents. Values are
// opaque to the cache; callers pass their own structs.
type DocumentCache struct {
	redis *RedisCache
	ttl   time.Duration
}

func NewDocumentCache(redis *RedisCache, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DocumentCache{redis: redis, ttl: ttl}
}

func docKey(kind, docID string) string {
	return fmt.Sprintf("caselaw:%s:%s", kind, docID)
}

func (dc *DocumentCache) get(kind, docID string, out interface{}) bool {
	if dc == nil || dc.redis == nil {
		return false
	}
	ok, err := dc.redis.GetObject(docKey(kind, docID), out)
	return err == nil && ok
}

func (dc *DocumentCache) set(kind, docID string, value interface{}) error {
	if dc == nil || dc.redis == nil {
		return nil
	}
	return dc.redis.SetObject(docKey(kind, docID), value, dc.ttl)
}

func (dc *DocumentCache) GetDocument(docID string, out interface{}) bool {
	return dc.get("doc", docID, out)
}

func (dc *DocumentCache) SetDocument(docID string, doc interface{}) error {
	return dc.set("doc", docID, doc)
}

func (dc *DocumentCache) GetMeta(docID string, out interface{}) bool {
	return dc.get("meta", docID, out)
}

func (dc *DocumentCache) SetMeta(docID string, meta interface{}) error {
	return dc.set("meta", docID, meta)
}
