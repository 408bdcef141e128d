// Package models - các model thuộc domain catalog (danh mục, sản phẩm).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category đại diện cho danh mục sản phẩm
type Category struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Slug      string             `json:"slug,omitempty" bson:"slug,omitempty" index:"unique,sparse"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}
