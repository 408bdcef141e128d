package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook ghi log bất đồng bộ: Fire chỉ đẩy entry vào channel,
// một goroutine riêng format và ghi vào các writer. Request handling
// không bao giờ phải đợi file I/O.
type AsyncHook struct {
	writers    []io.Writer
	entries    chan *logrus.Entry
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	bufferSize int
}

// NewAsyncHookWithWriters tạo async hook ghi ra nhiều writer.
// bufferSize <= 0 thì dùng mặc định 1000 entries.
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers:    writers,
		entries:    make(chan *logrus.Entry, bufferSize),
		bufferSize: bufferSize,
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đẩy entry vào channel, không bao giờ block.
// Channel đầy thì entry bị bỏ qua; hook đã đóng thì ghi thẳng vào writer.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		data, err := h.formatEntry(entry)
		if err != nil {
			return err
		}
		for _, writer := range h.writers {
			_, _ = writer.Write(data)
		}
		return nil
	}

	select {
	case h.entries <- entry:
	default:
		// Không log warning ở đây: log trong hook sẽ tạo vòng lặp
	}
	return nil
}

// formatEntry format entry bằng formatter của logger gốc
func (h *AsyncHook) formatEntry(entry *logrus.Entry) ([]byte, error) {
	if entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// processEntries chạy trên goroutine riêng cho đến khi channel đóng
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()
	for entry := range h.entries {
		h.writeEntry(entry)
	}
}

// writeEntry format và ghi một entry vào mọi writer.
// Recover tại đây để panic trong formatter/writer không giết goroutine logger.
func (h *AsyncHook) writeEntry(entry *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			// Ghi thẳng stderr, không dùng logger để tránh vòng lặp
			fmt.Fprintf(os.Stderr, "[LOGGER PANIC] Logger goroutine panic recovered: %v\n", r)
			debug.PrintStack()
		}
	}()

	data, err := h.formatEntry(entry)
	if err != nil {
		return
	}
	for _, writer := range h.writers {
		_, _ = writer.Write(data)
	}
}

// Close đóng channel và đợi goroutine ghi nốt các entry còn buffer
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}
