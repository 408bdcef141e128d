package main

import (
	"context"
	"errors"

	authmodels "shop_commerce/internal/api/auth/models"
	authsvc "shop_commerce/internal/api/auth/service"
	basesvc "shop_commerce/internal/api/base/service"
	catalogmodels "shop_commerce/internal/api/catalog/models"
	catalogsvc "shop_commerce/internal/api/catalog/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
)

// InitDefaultData khởi tạo dữ liệu mặc định khi chạy ở chế độ init
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.MongoDB_ServerConfig.InitMode {
		log.Info("Init mode disabled, skipping default data")
		return
	}

	log.Info("🔄 [INIT] Starting InitDefaultData...")
	ctx := context.TODO()

	// 1. Seed user admin từ config (nếu có)
	log.Info("🔄 [INIT] Step 1: Initializing admin user...")
	if err := initAdminUser(ctx); err != nil {
		log.Warnf("Failed to initialize admin user: %v", err)
	} else {
		log.Info("✅ [INIT] Step 1: Admin user initialized")
	}

	// 2. Seed catalog mẫu (chỉ khi collection còn trống)
	log.Info("🔄 [INIT] Step 2: Initializing sample catalog...")
	if err := initSampleCatalog(ctx); err != nil {
		log.Warnf("Failed to initialize sample catalog: %v", err)
	} else {
		log.Info("✅ [INIT] Step 2: Sample catalog initialized")
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}

// initAdminUser tạo user admin từ ADMIN_EMAIL nếu chưa tồn tại
func initAdminUser(ctx context.Context) error {
	log := logger.GetAppLogger()

	adminEmail := global.MongoDB_ServerConfig.AdminEmail
	if adminEmail == "" {
		log.Info("ADMIN_EMAIL not set, skipping admin seed")
		return nil
	}
	if err := utility.ValidateEmail(adminEmail); err != nil {
		log.Warnf("ADMIN_EMAIL %q is not a valid email, skipping admin seed", adminEmail)
		return nil
	}

	userService, err := authsvc.NewUserService()
	if err != nil {
		return err
	}

	existing, err := userService.FindByEmail(ctx, adminEmail)
	if err == nil {
		// Đã có user với email này - đảm bảo role admin
		if !existing.IsAdmin() {
			log.Warnf("User %s exists but is not admin, promoting", adminEmail)
			updateData := &basesvc.UpdateData{
				Set: map[string]interface{}{
					"role": authmodels.RoleAdmin,
				},
			}
			if _, err := userService.UpdateById(ctx, existing.ID, updateData); err != nil {
				return err
			}
		}
		log.Infof("Admin user already exists: %s", adminEmail)
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	admin, err := userService.InsertOne(ctx, authmodels.User{
		Name:  "Administrator",
		Email: adminEmail,
		Role:  authmodels.RoleAdmin,
	})
	if err != nil {
		return err
	}

	// Phát hành sẵn token để admin có thể gọi API ngay sau khi seed
	token, err := userService.IssueToken(ctx, admin.ID)
	if err != nil {
		log.Warnf("Failed to issue token for admin user: %v", err)
		return nil
	}
	log.Infof("Admin user created: %s (token issued, length %d)", adminEmail, len(token))
	return nil
}

// initSampleCatalog tạo category và product mẫu để test thủ công
// Chỉ seed khi collection catalog còn trống, không bao giờ ghi đè dữ liệu thật
func initSampleCatalog(ctx context.Context) error {
	categoryService, err := catalogsvc.NewCategoryService()
	if err != nil {
		return err
	}
	productService, err := catalogsvc.NewProductService()
	if err != nil {
		return err
	}

	count, err := categoryService.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		logger.GetAppLogger().Infof("Catalog already has %d categories, skipping sample data", count)
		return nil
	}

	categories := []catalogmodels.Category{
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Books", Slug: "books"},
	}

	for _, category := range categories {
		created, err := categoryService.InsertOne(ctx, category)
		if err != nil {
			return err
		}

		products := sampleProductsFor(created)
		for _, product := range products {
			if _, err := productService.InsertOne(ctx, product); err != nil {
				return err
			}
		}
	}
	return nil
}

// sampleProductsFor sinh vài product mẫu cho một category
func sampleProductsFor(category catalogmodels.Category) []catalogmodels.Product {
	switch category.Slug {
	case "electronics":
		return []catalogmodels.Product{
			{
				Name:        "Wireless Headphones",
				Slug:        "wireless-headphones",
				Description: "Tai nghe không dây chống ồn",
				Price:       129.99,
				Category:    category.ID,
				Quantity:    50,
				Shipping:    true,
			},
			{
				Name:        "Mechanical Keyboard",
				Slug:        "mechanical-keyboard",
				Description: "Bàn phím cơ switch đỏ",
				Price:       89.50,
				Category:    category.ID,
				Quantity:    30,
				Shipping:    true,
			},
		}
	case "books":
		return []catalogmodels.Product{
			{
				Name:        "The Pragmatic Programmer",
				Slug:        "the-pragmatic-programmer",
				Description: "Sách kinh điển về nghề lập trình",
				Price:       42.00,
				Category:    category.ID,
				Quantity:    100,
				Shipping:    false,
			},
		}
	}
	return nil
}
