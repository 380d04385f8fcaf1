package gateway

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CacheEntry 缓存条目
type CacheEntry struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
	ETag        string
}

// MemoryCache 内存缓存
type MemoryCache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex

	// 配置
	DefaultTTL time.Duration
	MaxEntries int

	now func() time.Time
}

// NewMemoryCache 创建内存缓存，过期条目在写入时顺带清理
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*CacheEntry),
		DefaultTTL: time.Minute,
		MaxEntries: 500,
		now:        time.Now,
	}
}

// Get 获取未过期的缓存条目
func (mc *MemoryCache) Get(key string) *CacheEntry {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	entry, exists := mc.entries[key]
	if !exists || mc.now().After(entry.ExpiresAt) {
		return nil
	}
	return entry
}

// Set 设置缓存条目
func (mc *MemoryCache) Set(key string, entry *CacheEntry) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if len(mc.entries) >= mc.MaxEntries {
		mc.evictExpired()
		if len(mc.entries) >= mc.MaxEntries {
			mc.evictOldest()
		}
	}
	mc.entries[key] = entry
}

// Invalidate 删除指定前缀的条目
func (mc *MemoryCache) Invalidate(prefix string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for key := range mc.entries {
		if strings.HasPrefix(key, prefix) {
			delete(mc.entries, key)
		}
	}
}

func (mc *MemoryCache) evictExpired() {
	now := mc.now()
	for key, entry := range mc.entries {
		if now.After(entry.ExpiresAt) {
			delete(mc.entries, key)
		}
	}
}

func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range mc.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

// CacheMiddleware 缓存中间件，只缓存成功的 GET 响应
type CacheMiddleware struct {
	cache *MemoryCache

	// CacheTTL 可缓存的路径前缀及其缓存时间
	CacheTTL map[string]time.Duration
}

// NewCacheMiddleware 创建缓存中间件
func NewCacheMiddleware() *CacheMiddleware {
	return &CacheMiddleware{
		cache: NewMemoryCache(),
		CacheTTL: map[string]time.Duration{
			"/ships":             10 * time.Minute, // 数值表只在启动时加载
			"/skills":            10 * time.Minute,
			"/stats/leaderboard": 30 * time.Second,
		},
	}
}

// Middleware 缓存中间件
func (cm *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttl, ok := cm.ttlFor(r.URL.Path)
		if r.Method != http.MethodGet || !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if entry := cm.cache.Get(key); entry != nil {
			if r.Header.Get("If-None-Match") == entry.ETag {
				w.Header().Set("ETag", entry.ETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("X-Cache", "HIT")
			cm.write(w, entry, ttl)
			return
		}

		// 先缓冲响应，成功时才写入缓存
		recorder := &cacheResponseRecorder{header: make(http.Header), statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			for k, v := range recorder.header {
				w.Header()[k] = v
			}
			w.WriteHeader(recorder.statusCode)
			w.Write(recorder.body.Bytes())
			return
		}

		entry := &CacheEntry{
			Data:        recorder.body.Bytes(),
			ContentType: recorder.header.Get("Content-Type"),
			ExpiresAt:   cm.cache.now().Add(ttl),
			ETag:        fmt.Sprintf(`"%x"`, md5.Sum(recorder.body.Bytes())),
		}
		cm.cache.Set(key, entry)

		w.Header().Set("X-Cache", "MISS")
		cm.write(w, entry, ttl)
	})
}

// ttlFor 查找路径对应的缓存时间
func (cm *CacheMiddleware) ttlFor(path string) (time.Duration, bool) {
	for prefix, ttl := range cm.CacheTTL {
		if strings.HasPrefix(path, prefix) {
			return ttl, true
		}
	}
	return 0, false
}

// write 写入缓存的响应
func (cm *CacheMiddleware) write(w http.ResponseWriter, entry *CacheEntry, ttl time.Duration) {
	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	w.Header().Set("ETag", entry.ETag)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(ttl.Seconds())))
	w.WriteHeader(http.StatusOK)
	w.Write(entry.Data)
}

// cacheResponseRecorder 缓冲下游响应
type cacheResponseRecorder struct {
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

func (crr *cacheResponseRecorder) Header() http.Header {
	return crr.header
}

func (crr *cacheResponseRecorder) WriteHeader(code int) {
	crr.statusCode = code
}

func (crr *cacheResponseRecorder) Write(data []byte) (int, error) {
	return crr.body.Write(data)
}
