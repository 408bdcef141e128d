// Package orderdto chứa DTO cho domain Order (checkout, trạng thái đơn hàng).
package orderdto

// CartItem là một sản phẩm trong giỏ hàng lúc checkout
// Price do client gửi lên chỉ để hiển thị, KHÔNG được dùng để tính tiền:
// giá tính tiền luôn được tra lại từ catalog theo _id
type CartItem struct {
	ID    string  `json:"_id" validate:"required"`
	Price float64 `json:"price,omitempty"`
}

// CheckoutInput là body của request thanh toán
type CheckoutInput struct {
	Nonce string     `json:"nonce" validate:"required"`
	Cart  []CartItem `json:"cart" validate:"required,min=1,dive"`
}

// CheckoutResult là kết quả trả về cho client sau khi thanh toán thành công
type CheckoutResult struct {
	Ok bool `json:"ok"`
}

// OrderStatusUpdateInput là body của request cập nhật trạng thái đơn hàng
type OrderStatusUpdateInput struct {
	Status string `json:"status" validate:"required,order_status"`
}

// OrderStatusParams params từ URL khi cập nhật trạng thái đơn hàng
type OrderStatusParams struct {
	OrderID string `uri:"orderId" validate:"required"`
}
