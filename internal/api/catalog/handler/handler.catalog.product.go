// Package cataloghdl - handler cho domain catalog.
package cataloghdl

import (
	"fmt"

	basehdl "shop_commerce/internal/api/base/handler"
	catalogdto "shop_commerce/internal/api/catalog/dto"
	catalogmodels "shop_commerce/internal/api/catalog/models"
	catalogsvc "shop_commerce/internal/api/catalog/service"
)

// ProductHandler xử lý các request liên quan đến sản phẩm
type ProductHandler struct {
	*basehdl.BaseHandler[catalogmodels.Product, catalogdto.ProductCreateInput, catalogdto.ProductUpdateInput]
	ProductService *catalogsvc.ProductService
}

// NewProductHandler tạo mới ProductHandler
func NewProductHandler() (*ProductHandler, error) {
	productService, err := catalogsvc.NewProductService()
	if err != nil {
		return nil, fmt.Errorf("failed to create product service: %v", err)
	}
	hdl := &ProductHandler{
		ProductService: productService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[catalogmodels.Product, catalogdto.ProductCreateInput, catalogdto.ProductUpdateInput](productService.BaseServiceMongoImpl)
	return hdl, nil
}
