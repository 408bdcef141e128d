package utility

import (
	"sync"
	"time"
)

// cacheEntry giữ giá trị cùng thời điểm hết hạn
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache là cache in-memory có TTL theo từng entry.
// Dùng cho dữ liệu tra cứu lặp lại nhiều lần trong thời gian ngắn (ví dụ: token -> user).
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	stopChan chan struct{}
}

// NewCache tạo cache với thời gian sống ttl cho mỗi entry.
// Một goroutine nền quét và loại bỏ các entry hết hạn mỗi chu kỳ cleanup.
func NewCache(ttl, cleanup time.Duration) *Cache {
	c := &Cache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go c.evictLoop(cleanup)
	return c
}

// Set lưu giá trị vào cache, làm mới thời gian sống
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Get trả về giá trị nếu còn hạn. Entry hết hạn coi như không tồn tại.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Delete xóa một key khỏi cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// evictLoop quét định kỳ và loại bỏ các entry đã hết hạn
func (c *Cache) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}

// Stop dừng goroutine dọn dẹp
func (c *Cache) Stop() {
	close(c.stopChan)
}
