// Package router đăng ký các route thuộc domain Catalog: Products, Categories.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	cataloghdl "shop_commerce/internal/api/catalog/handler"
	apirouter "shop_commerce/internal/api/router"
)

// Register đăng ký tất cả route catalog lên v1.
// Catalog là dữ liệu public, không yêu cầu đăng nhập để đọc.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	productHandler, err := cataloghdl.NewProductHandler()
	if err != nil {
		return fmt.Errorf("create product handler: %w", err)
	}
	r.RegisterCRUDRoutes(v1, "/product", productHandler, apirouter.ReadOnlyConfig, nil)

	categoryHandler, err := cataloghdl.NewCategoryHandler()
	if err != nil {
		return fmt.Errorf("create category handler: %w", err)
	}
	r.RegisterCRUDRoutes(v1, "/category", categoryHandler, apirouter.ReadOnlyConfig, nil)

	return nil
}
