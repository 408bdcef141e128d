package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shop_commerce/config"
	authmodels "shop_commerce/internal/api/auth/models"
	catalogmodels "shop_commerce/internal/api/catalog/models"
	"shop_commerce/internal/api/events"
	ordermodels "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/database"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/global"
	"shop_commerce/internal/payment"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initPaymentGateway()   // Khởi tạo client cổng thanh toán
	initDataChangeAudit()  // Đăng ký audit log cho các thay đổi dữ liệu
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Users = "auth_users"
	global.MongoDB_ColNames.CatalogProducts = "catalog_products"
	global.MongoDB_ColNames.CatalogCategories = "catalog_categories"
	global.MongoDB_ColNames.ShopOrders = "shop_orders"
	global.MongoDB_ColNames.ShopPendingCharges = "shop_pending_charges"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, order_status, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.CatalogProducts), catalogmodels.Product{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.CatalogCategories), catalogmodels.Category{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.ShopOrders), ordermodels.Order{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.ShopPendingCharges), ordermodels.PendingCharge{})
}

// initDataChangeAudit đăng ký handler ghi audit log cho mọi thay đổi dữ liệu qua CRUD
func initDataChangeAudit() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		logger.GetAuditLogger().WithFields(logrus.Fields{
			"collection": e.CollectionName,
			"operation":  e.Operation,
		}).Info("Data changed")
	})
	logrus.Info("Registered data change audit handler")
}

// initPaymentGateway khởi tạo client cổng thanh toán từ cấu hình
func initPaymentGateway() {
	cfg := global.MongoDB_ServerConfig
	global.PaymentGateway = payment.NewRestClient(payment.ClientConfig{
		BaseURL:    cfg.Gateway_BaseURL,
		MerchantID: cfg.Gateway_MerchantID,
		PublicKey:  cfg.Gateway_PublicKey,
		PrivateKey: cfg.Gateway_PrivateKey,
		Timeout:    time.Duration(cfg.Gateway_TimeoutSec) * time.Second,
	})
	logrus.Info("Initialized payment gateway client")
}
