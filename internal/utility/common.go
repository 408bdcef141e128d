package utility

import (
	"regexp"
	"time"

	"shop_commerce/internal/common"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CurrentTimeInMilli lấy timestamp hiện tại tính bằng mili giây.
// Toàn bộ timestamp trong DB (createdAt, updatedAt, chargedAt...) dùng hàm này.
func CurrentTimeInMilli() int64 {
	return time.Now().Round(time.Millisecond).UnixNano() / int64(time.Millisecond)
}

// ValidateEmail kiểm tra định dạng email
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return common.ErrInvalidFormat
	}
	return nil
}
