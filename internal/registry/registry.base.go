// Package registry cung cấp generic registry thread-safe để quản lý
// các singleton instance (collections, databases) trong ứng dụng.
package registry

import (
	"fmt"
	"sync"

	"shop_commerce/internal/common"
)

// Registry lưu item theo tên, an toàn cho concurrent use.
//
//	colRegistry := NewRegistry[*mongo.Collection]()
//	colRegistry.Register("shop_orders", col)
//	if col, exists := colRegistry.Get("shop_orders"); exists { ... }
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewRegistry tạo registry rỗng cho kiểu T
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký item theo tên, ghi đè nếu tên đã tồn tại.
// isNew cho biết có phải đăng ký lần đầu không.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// GetOrCreate lấy item theo tên, chưa có thì gọi creator để tạo và đăng ký.
// Creator chạy trong lock nên chỉ được gọi đúng một lần cho mỗi tên.
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	if name == "" {
		return item, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existingItem, exists := r.items[name]; exists {
		return existingItem, nil
	}

	newItem, err := creator()
	if err != nil {
		return item, fmt.Errorf("failed to create item: %w", err)
	}
	r.items[name] = newItem
	return newItem, nil
}

// ClearAll xóa toàn bộ registry, trả về số item đã xóa.
// cleanup (nếu có) được gọi cho từng item trước khi xóa; bất kỳ lỗi cleanup
// nào cũng làm cả thao tác fail và registry giữ nguyên.
func (r *Registry[T]) ClearAll(cleanup func(T) error) (count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count = len(r.items)
	if count == 0 {
		return 0, nil
	}

	if cleanup != nil {
		var errs []error
		for name, item := range r.items {
			if err := cleanup(item); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup %s: %w", name, err))
			}
		}
		if len(errs) > 0 {
			return 0, fmt.Errorf("cleanup errors occurred: %v", errs)
		}
	}

	r.items = make(map[string]T)
	return count, nil
}
