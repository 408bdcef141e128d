package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"shop_commerce/config"
	"shop_commerce/internal/payment"
	"shop_commerce/internal/registry"
)

// MongoDB_Shop_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Shop_CollectionName struct {
	Users             string // Tên collection cho người dùng
	CatalogProducts   string // Tên collection cho sản phẩm
	CatalogCategories string // Tên collection cho danh mục sản phẩm
	ShopOrders        string // Tên collection cho đơn hàng
	ShopPendingCharges string // Tên collection cho giao dịch thanh toán đang chờ đối soát
}

// Các biến toàn cục
var Validate *validator.Validate                                                    // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                   // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                      // Cấu hình của server
var MongoDB_ColNames MongoDB_Shop_CollectionName = *new(MongoDB_Shop_CollectionName) // Tên các collection
var PaymentGateway payment.Gateway                                                  // Client cổng thanh toán (khởi tạo một lần lúc boot)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
