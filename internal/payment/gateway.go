// Package payment cung cấp client nói chuyện với cổng thanh toán.
// Cổng thanh toán chịu trách nhiệm phát hành client token cho frontend
// và thực hiện giao dịch sale/refund từ payment method nonce.
package payment

import (
	"context"
)

// TokenResult là client token do cổng thanh toán phát hành
// Blob được trả nguyên vẹn về frontend để khởi tạo drop-in UI
type TokenResult struct {
	ClientToken string                 `json:"clientToken"`
	Raw         map[string]interface{} `json:"-"`
}

// SaleOptions các tùy chọn khi thực hiện giao dịch sale
type SaleOptions struct {
	SubmitForSettlement bool `json:"submitForSettlement"`
}

// SaleRequest là yêu cầu thực hiện giao dịch sale
// Amount là chuỗi thập phân 2 chữ số (định dạng cổng thanh toán yêu cầu)
type SaleRequest struct {
	Amount             string      `json:"amount"`
	PaymentMethodNonce string      `json:"paymentMethodNonce"`
	Options            SaleOptions `json:"options"`
}

// SaleResult là kết quả giao dịch sale
// Raw giữ nguyên blob mà cổng thanh toán trả về, được lưu as-is vào đơn hàng
type SaleResult struct {
	Success       bool
	TransactionID string
	Raw           map[string]interface{}
}

// Gateway là interface của cổng thanh toán
// Mọi method đều nhận context để truyền timeout/cancellation từ request
type Gateway interface {
	// GenerateToken phát hành client token mới cho frontend
	GenerateToken(ctx context.Context) (*TokenResult, error)

	// Sale thực hiện giao dịch thanh toán từ nonce
	Sale(ctx context.Context, req *SaleRequest) (*SaleResult, error)

	// Refund hoàn tiền cho một giao dịch đã settle
	Refund(ctx context.Context, transactionID string, amount string) error
}
