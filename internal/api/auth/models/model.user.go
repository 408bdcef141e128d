// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vai trò của người dùng trong hệ thống
const (
	RoleBuyer = 0 // Người mua hàng thông thường
	RoleAdmin = 1 // Quản trị viên (toàn quyền với đơn hàng)
)

// User định nghĩa mô hình người dùng
// Token chứa token xác thực mới nhất của người dùng (cập nhật mỗi lần login)
// Password và Salt không bao giờ được serialize ra JSON
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	Password  string             `json:"-" bson:"password,omitempty"`
	Salt      string             `json:"-" bson:"salt,omitempty"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty" index:"unique,sparse"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	Role      int                `json:"role" bson:"role" index:"single:1"`
	Token     string             `json:"token,omitempty" bson:"token,omitempty"`
	IsBlock   bool               `json:"-" bson:"isBlock"`
	BlockNote string             `json:"-" bson:"blockNote"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin kiểm tra người dùng có phải quản trị viên không
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
