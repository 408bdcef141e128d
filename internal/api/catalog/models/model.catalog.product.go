package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product đại diện cho sản phẩm trong catalog
// Price là giá bán hiện hành, mọi tính toán thanh toán đều lấy giá từ đây
// chứ không bao giờ tin giá do client gửi lên
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" index:"text"`
	Slug        string             `json:"slug,omitempty" bson:"slug,omitempty" index:"unique,sparse"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Category    primitive.ObjectID `json:"category,omitempty" bson:"category,omitempty" index:"single:1"`
	Quantity    int64              `json:"quantity" bson:"quantity"`
	Sold        int64              `json:"sold" bson:"sold"`
	Shipping    bool               `json:"shipping" bson:"shipping"`
	CreatedAt   int64              `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt   int64              `json:"updatedAt" bson:"updatedAt"`
}
