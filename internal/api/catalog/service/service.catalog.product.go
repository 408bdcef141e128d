// Package catalogsvc - service cho domain catalog.
package catalogsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "shop_commerce/internal/api/catalog/models"
	basesvc "shop_commerce/internal/api/base/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
)

// ProductService là cấu trúc chứa các phương thức liên quan đến sản phẩm
type ProductService struct {
	*basesvc.BaseServiceMongoImpl[models.Product]
}

// NewProductService tạo mới ProductService
func NewProductService() (*ProductService, error) {
	productCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CatalogProducts)
	if !exist {
		return nil, fmt.Errorf("failed to get catalog_products collection: %v", common.ErrNotFound)
	}

	return &ProductService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Product](productCollection),
	}, nil
}

// FindBySlug tìm sản phẩm theo slug
func (s *ProductService) FindBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"slug": slug}, nil)
}

// PriceByIds trả về map giá hiện hành của các sản phẩm theo id (key là hex string)
// Sản phẩm không tồn tại sẽ không có trong map, caller tự kiểm tra thiếu
func (s *ProductService) PriceByIds(ctx context.Context, ids []primitive.ObjectID) (map[string]float64, error) {
	products, err := s.BaseServiceMongoImpl.FindManyByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(products))
	for _, p := range products {
		prices[p.ID.Hex()] = p.Price
	}
	return prices, nil
}
