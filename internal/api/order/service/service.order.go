package ordersvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "shop_commerce/internal/api/base/service"
	models "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
)

// OrderService là cấu trúc chứa các phương thức liên quan đến đơn hàng
type OrderService struct {
	*basesvc.BaseServiceMongoImpl[models.Order]
}

// NewOrderService tạo mới OrderService
func NewOrderService() (*OrderService, error) {
	orderCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ShopOrders)
	if !exist {
		return nil, fmt.Errorf("failed to get shop_orders collection: %v", common.ErrNotFound)
	}

	return &OrderService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Order](orderCollection),
	}, nil
}

// CreateFromCharge ghi đơn hàng từ một pending charge đã trừ tiền thành công
// Idempotent qua unique index trên refKey: nếu đơn hàng của charge này đã tồn tại
// (worker đối soát chạy song song với request), trả về đơn hàng hiện có
func (s *OrderService) CreateFromCharge(ctx context.Context, charge models.PendingCharge, payment map[string]interface{}) (models.Order, error) {
	order := models.Order{
		Products: charge.Products,
		Payment:  payment,
		Buyer:    charge.Buyer,
		Status:   common.OrderStatusNotProcess,
		RefKey:   charge.RefKey,
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, order)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) || errors.Is(err, common.ErrDuplicate) {
			return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"refKey": charge.RefKey}, nil)
		}
		return created, err
	}
	return created, nil
}

// resolveStages là các stage join chung cho mọi truy vấn đọc đơn hàng:
// - products: resolve các sản phẩm trong đơn từ catalog
// - buyer: resolve người mua, loại các trường nhạy cảm (password, salt, token)
func resolveStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         global.MongoDB_ColNames.CatalogProducts,
			"localField":   "products",
			"foreignField": "_id",
			"as":           "products",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         global.MongoDB_ColNames.Users,
			"localField":   "buyer",
			"foreignField": "_id",
			"as":           "buyer",
			"pipeline": []bson.M{
				{"$project": bson.M{"password": 0, "salt": 0, "token": 0}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$buyer",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// buyerOrdersPipeline giới hạn kết quả về đúng người mua đang đăng nhập
// trước khi join: $match theo buyer phải là stage đầu tiên
func buyerOrdersPipeline(buyerID primitive.ObjectID) []bson.D {
	pipeStages := []bson.D{
		{{Key: "$match", Value: bson.M{"buyer": buyerID}}},
	}
	return append(pipeStages, resolveStages()...)
}

// allOrdersPipeline trả về mọi đơn hàng trong hệ thống, mới nhất trước
func allOrdersPipeline() []bson.D {
	pipeStages := resolveStages()
	return append(pipeStages, bson.D{{Key: "$sort", Value: bson.M{"createdAt": -1}}})
}

// ListOrdersForBuyer trả về các đơn hàng của một người mua, đã resolve sản phẩm và người mua
func (s *OrderService) ListOrdersForBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]bson.M, error) {
	return s.aggregate(ctx, buyerOrdersPipeline(buyerID))
}

// ListAllOrders trả về tất cả đơn hàng trong hệ thống, mới nhất trước
func (s *OrderService) ListAllOrders(ctx context.Context) ([]bson.M, error) {
	return s.aggregate(ctx, allOrdersPipeline())
}

// aggregate chạy pipeline trên collection đơn hàng và decode kết quả
func (s *OrderService) aggregate(ctx context.Context, pipeStages []bson.D) ([]bson.M, error) {
	cursor, err := s.Collection().Aggregate(ctx, pipeStages)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// UpdateOrderStatus cập nhật trạng thái đơn hàng và trả về bản ghi sau cập nhật
// Status phải là một trong các giá trị hợp lệ (đã validate ở tầng handler)
// Trả về common.ErrNotFound nếu đơn hàng không tồn tại
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status string) (models.Order, error) {
	if !common.IsValidOrderStatus(status) {
		var zero models.Order
		return zero, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Trạng thái '%s' không hợp lệ. Các trạng thái hợp lệ: %v", status, common.OrderStatusValues),
			common.StatusBadRequest,
			nil,
		)
	}

	filter := bson.M{"_id": orderID}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status": status,
		},
	}
	return s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update, nil)
}
