// Package models - các model thuộc domain order (đơn hàng, giao dịch chờ đối soát).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order đại diện cho đơn hàng đã thanh toán thành công
// Products giữ nguyên thứ tự sản phẩm trong giỏ hàng lúc checkout
// Payment là blob kết quả giao dịch do cổng thanh toán trả về, lưu as-is
// RefKey liên kết đơn hàng với pending charge đã tạo ra nó (chống tạo trùng khi đối soát)
type Order struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Products  []primitive.ObjectID   `json:"products" bson:"products"`
	Payment   map[string]interface{} `json:"payment" bson:"payment"`
	Buyer     primitive.ObjectID     `json:"buyer" bson:"buyer" index:"single:1"`
	Status    string                 `json:"status" bson:"status" index:"single:1"`
	RefKey    string                 `json:"refKey,omitempty" bson:"refKey,omitempty" index:"unique,sparse"`
	CreatedAt int64                  `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt int64                  `json:"updatedAt" bson:"updatedAt"`
}
