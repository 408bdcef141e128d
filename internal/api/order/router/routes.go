// Package router đăng ký các route thuộc domain Order: token thanh toán, checkout, đơn hàng.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"shop_commerce/internal/api/middleware"
	orderhdl "shop_commerce/internal/api/order/handler"
	apirouter "shop_commerce/internal/api/router"
)

// Register đăng ký tất cả route order lên v1.
// Path giữ nguyên contract cũ mà frontend đang gọi:
//
//	GET  /api/v1/product/braintree/token   (public)
//	POST /api/v1/product/braintree/payment (auth)
//	GET  /api/v1/auth/orders               (auth)
//	GET  /api/v1/auth/all-orders           (auth + admin)
//	PUT  /api/v1/auth/order-status/:orderId (auth + admin)
func Register(v1 fiber.Router, r *apirouter.Router) error {
	orderHandler, err := orderhdl.NewOrderHandler()
	if err != nil {
		return fmt.Errorf("create order handler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	adminMiddleware := middleware.RequireAdmin()

	// Token route là public: client token chỉ dùng để khởi tạo drop-in UI,
	// không mang dữ liệu tài khoản. Payment phải tách prefix riêng vì middleware
	// đăng ký qua group.Use() áp dụng cho MỌI path khớp prefix - gộp chung
	// "/product/braintree" sẽ khóa nhầm cả route token
	apirouter.RegisterRouteWithMiddleware(v1, "/product/braintree/token", "GET", "/", nil, orderHandler.HandleGetToken)
	apirouter.RegisterRouteWithMiddleware(v1, "/product/braintree/payment", "POST", "/", []fiber.Handler{authMiddleware}, orderHandler.HandleCheckout)

	// Tương tự, admin gate không được đặt ở prefix "/auth"
	// (sẽ chặn nhầm /auth/orders của người mua)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth/orders", "GET", "/", []fiber.Handler{authMiddleware}, orderHandler.HandleBuyerOrders)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth/all-orders", "GET", "/", []fiber.Handler{authMiddleware, adminMiddleware}, orderHandler.HandleAllOrders)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth/order-status", "PUT", "/:orderId", []fiber.Handler{authMiddleware, adminMiddleware}, orderHandler.HandleUpdateStatus)

	return nil
}
