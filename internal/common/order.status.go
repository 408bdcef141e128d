package common

// Trạng thái vòng đời đơn hàng.
// Danh sách giá trị giữ nguyên từ hệ thống cũ (kể cả chính tả) để không phá client hiện tại.
const (
	OrderStatusNotProcess = "Not Process" // Trạng thái mặc định khi tạo đơn
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "deliverd"
	OrderStatusCancelled  = "cancel"
)

// OrderStatusValues là danh sách đầy đủ các trạng thái hợp lệ của đơn hàng
var OrderStatusValues = []string{
	OrderStatusNotProcess,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus kiểm tra status có nằm trong danh sách trạng thái hợp lệ không.
// So sánh phân biệt hoa thường: "shipped" không hợp lệ, "Shipped" hợp lệ.
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatusValues {
		if s == status {
			return true
		}
	}
	return false
}
