package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của PendingCharge
// Luồng bình thường: pending -> charged -> recorded
// Thất bại ở bước sale hoặc hoàn tiền sau khi hết số lần thử: failed
const (
	PendingChargeStatePending  = "pending"  // Đã ghi nhận ý định thanh toán, chưa gọi cổng thanh toán
	PendingChargeStateCharged  = "charged"  // Cổng thanh toán đã trừ tiền, đơn hàng chưa được ghi
	PendingChargeStateRecorded = "recorded" // Đơn hàng đã được ghi thành công
	PendingChargeStateFailed   = "failed"   // Giao dịch thất bại hoặc đã hoàn tiền
)

// PendingCharge là bản ghi write-ahead cho một lần thanh toán
// Được ghi TRƯỚC khi gọi cổng thanh toán để không bao giờ mất dấu tiền đã trừ:
// nếu ghi đơn hàng thất bại sau khi trừ tiền, worker đối soát sẽ dựa vào bản ghi này
// để tạo lại đơn hàng hoặc hoàn tiền
// NonceHash (sha256 của nonce) có unique sparse index: cùng một nonce không bao giờ
// tạo được hai charge, kể cả khi request bị gửi lại
type PendingCharge struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	RefKey    string               `json:"refKey" bson:"refKey" index:"unique,sparse"`
	Buyer     primitive.ObjectID   `json:"buyer" bson:"buyer" index:"single:1"`
	Products  []primitive.ObjectID `json:"products" bson:"products"`
	Amount    string               `json:"amount" bson:"amount"`
	NonceHash string               `json:"-" bson:"nonceHash,omitempty" index:"unique,sparse"`
	State     string               `json:"state" bson:"state" index:"single:1"`
	TxnID     string               `json:"txnId,omitempty" bson:"txnId,omitempty"`
	OrderID   primitive.ObjectID   `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Attempts  int                  `json:"attempts" bson:"attempts"`
	LastError string               `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt int64                `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt int64                `json:"updatedAt" bson:"updatedAt"`
}
