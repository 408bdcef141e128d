// Package events là bus sự kiện nội bộ cho các thay đổi dữ liệu qua CRUD.
// BaseServiceMongoImpl phát event sau mỗi thao tác ghi thành công, các logic
// phản ứng (audit log, cache invalidation, ...) đăng ký qua OnDataChanged.
package events

import (
	"context"
	"slices"
	"sync"
)

// Loại thao tác ghi
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DataChangeEvent mô tả một thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi, với delete là bản ghi trước khi xóa.
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler nhận event, chạy trên goroutine riêng
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlersMu sync.RWMutex
	handlers   []DataChangeHandler
)

// OnDataChanged đăng ký handler, gọi lúc init app
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged phát event tới mọi handler đã đăng ký.
// Mỗi handler chạy trong goroutine riêng và được recover,
// panic trong một handler không ảnh hưởng các handler khác hay request đang xử lý.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := slices.Clone(handlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				// Nuốt panic: logger có thể chưa init khi event chạy sớm
				_ = recover()
			}()
			fn(ctx, e)
		}(h)
	}
}
