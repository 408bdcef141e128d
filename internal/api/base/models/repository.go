// Package models chứa các kiểu dùng chung cho layer repository/base.
package models

// PaginateResult là kết quả của một truy vấn phân trang.
// Total/TotalPage được tính từ CountDocuments với cùng filter.
type PaginateResult[T any] struct {
	Page      int64 `json:"page" bson:"page"`           // Trang hiện tại (bắt đầu từ 0)
	Limit     int64 `json:"limit" bson:"limit"`         // Số mục tối đa mỗi trang
	ItemCount int64 `json:"itemCount" bson:"itemCount"` // Số mục thực tế trong trang này
	Items     []T   `json:"items" bson:"items"`         // Dữ liệu của trang
	Total     int64 `json:"total" bson:"total"`         // Tổng số mục khớp filter
	TotalPage int64 `json:"totalPage" bson:"totalPage"` // Tổng số trang
}
