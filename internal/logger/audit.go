package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction mô tả một hành động audit
type AuditAction struct {
	Action       string                 `json:"action"`        // Tên hành động (ví dụ: "payment_sale", "order_status_update")
	UserID       string                 `json:"user_id"`       // ID người dùng thực hiện
	ResourceID   string                 `json:"resource_id"`   // ID tài nguyên bị ảnh hưởng
	ResourceType string                 `json:"resource_type"` // Loại tài nguyên (ví dụ: "order", "pending_charge")
	IP           string                 `json:"ip"`            // IP address
	UserAgent    string                 `json:"user_agent"`    // User agent
	Details      map[string]interface{} `json:"details"`       // Chi tiết bổ sung
	Timestamp    time.Time              `json:"timestamp"`     // Thời gian
}

// LogAction log một hành động audit
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	auditLogger := GetAuditLogger()

	if details == nil {
		details = make(map[string]interface{})
	}

	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}

	// Lấy user ID từ context nếu có
	if userID := c.Locals("user_id"); userID != nil {
		if uid, ok := userID.(string); ok {
			audit.UserID = uid
		}
	}

	// Lấy request ID
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		audit.Details["request_id"] = requestID
	}

	auditLogger.WithFields(logrus.Fields{
		"action":        audit.Action,
		"user_id":       audit.UserID,
		"resource_id":   audit.ResourceID,
		"resource_type": audit.ResourceType,
		"ip":            audit.IP,
		"user_agent":    audit.UserAgent,
		"details":       audit.Details,
		"timestamp":     audit.Timestamp,
	}).Info("Audit log")
}

// LogPayment log các thao tác thanh toán (sale, refund)
func LogPayment(action string, refKey string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["ref_key"] = refKey

	LogAction("payment_"+action, c, details)
}

// LogOrder log các thao tác trên đơn hàng (create, status_update)
func LogOrder(action string, orderID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["order_id"] = orderID

	LogAction("order_"+action, c, details)
}

// WithRequest trả về entry đã gắn sẵn thông tin request để trace
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields{
		"request_id": c.Get("X-Request-ID"),
		"method":     c.Method(),
		"path":       c.Path(),
		"ip":         c.IP(),
	})
}
