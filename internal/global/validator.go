package global

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop_commerce/internal/common"
)

// Các chuỗi bị chặn bởi rule no_xss (so sánh lowercase)
var xssPatterns = []string{
	"<script", "javascript:",
	"onerror=", "onload=", "onclick=", "onmouseover=",
	"eval(", "fromCharCode",
	"document.cookie", "document.write", "innerHTML", "window.location",
	"<iframe", "<object", "<embed",
}

// Các chuỗi bị chặn bởi rule no_sql_injection (so sánh uppercase)
var sqlPatterns = []string{
	"'", ";", "--", "/*", "*/", "xp_",
	"SELECT", "DROP", "DELETE", "UPDATE", "INSERT", "UNION",
	"OR 1=1", "OR '1'='1", "OR 'a'='a", "OR 1 = 1",
	"WAITFOR", "DELAY", "BENCHMARK",
}

// InitValidator khởi tạo validator và đăng ký các rule custom
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("no_sql_injection", validateNoSQLInjection)
	_ = Validate.RegisterValidation("exists", validateExists)
	_ = Validate.RegisterValidation("order_status", validateOrderStatus)
}

func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	for _, pattern := range xssPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

func validateNoSQLInjection(fl validator.FieldLevel) bool {
	value := strings.ToUpper(fl.Field().String())
	for _, pattern := range sqlPatterns {
		if strings.Contains(value, strings.ToUpper(pattern)) {
			return false
		}
	}
	return true
}

// validateExists kiểm tra ObjectID có tồn tại trong collection không (foreign key).
// Khai báo dạng validate:"exists=<collection_name>", ví dụ exists=catalog_products.
// Giá trị rỗng/nil được coi là optional và bỏ qua (kết hợp với omitempty).
func validateExists(fl validator.FieldLevel) bool {
	collectionName := fl.Param()
	if collectionName == "" {
		return false
	}

	var objID primitive.ObjectID
	switch v := fl.Field().Interface().(type) {
	case string:
		if v == "" {
			return true
		}
		var err error
		objID, err = primitive.ObjectIDFromHex(v)
		if err != nil {
			return false
		}
	case primitive.ObjectID:
		if v == primitive.NilObjectID {
			return true
		}
		objID = v
	case *primitive.ObjectID:
		if v == nil {
			return true
		}
		objID = *v
	default:
		return false
	}

	collection, exist := RegistryCollections.Get(collectionName)
	if !exist {
		return false
	}

	count, err := collection.CountDocuments(context.Background(), bson.M{"_id": objID})
	if err != nil {
		return false
	}
	return count > 0
}

// validateOrderStatus kiểm tra trạng thái đơn hàng nằm trong danh sách cho phép
func validateOrderStatus(fl validator.FieldLevel) bool {
	return common.IsValidOrderStatus(fl.Field().String())
}
