package catalogsvc

import (
	"fmt"

	models "shop_commerce/internal/api/catalog/models"
	basesvc "shop_commerce/internal/api/base/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
)

// CategoryService là cấu trúc chứa các phương thức liên quan đến danh mục
type CategoryService struct {
	*basesvc.BaseServiceMongoImpl[models.Category]
}

// NewCategoryService tạo mới CategoryService
func NewCategoryService() (*CategoryService, error) {
	categoryCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CatalogCategories)
	if !exist {
		return nil, fmt.Errorf("failed to get catalog_categories collection: %v", common.ErrNotFound)
	}

	return &CategoryService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Category](categoryCollection),
	}, nil
}
