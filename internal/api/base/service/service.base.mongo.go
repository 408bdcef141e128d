// package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB
package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "shop_commerce/internal/api/base/models"
	"shop_commerce/internal/api/events"
	"shop_commerce/internal/common"
	"shop_commerce/internal/utility"
)

// UpdateData gom các operator update MongoDB hay dùng thành một struct có kiểu.
// Domain service xây UpdateData trực tiếp thay vì viết bson.M với "$set" bằng tay.
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // chỉ áp dụng khi upsert tạo document mới
	Unset       map[string]interface{} `bson:"$unset,omitempty"`
	Push        map[string]interface{} `bson:"$push,omitempty"`
}

// normalizeUpdate chấp nhận *UpdateData, UpdateData, struct hoặc map và
// chuẩn hóa về *UpdateData. Map/struct không có operator sẽ được wrap vào $set.
func normalizeUpdate(data interface{}) (*UpdateData, error) {
	switch v := data.(type) {
	case *UpdateData:
		return v, nil
	case UpdateData:
		return &v, nil
	}

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, err
	}

	if _, hasSet := dataMap["$set"]; hasSet {
		update := &UpdateData{}
		if m, ok := dataMap["$set"].(map[string]interface{}); ok {
			update.Set = m
		}
		if m, ok := dataMap["$setOnInsert"].(map[string]interface{}); ok {
			update.SetOnInsert = m
		}
		if m, ok := dataMap["$unset"].(map[string]interface{}); ok {
			update.Unset = m
		}
		if m, ok := dataMap["$push"].(map[string]interface{}); ok {
			update.Push = m
		}
		return update, nil
	}

	return &UpdateData{Set: dataMap}, nil
}

// stampUpdate chuẩn hóa update và đóng dấu updatedAt vào $set
func stampUpdate(data interface{}) (*UpdateData, error) {
	update, err := normalizeUpdate(data)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	if update.Set == nil {
		update.Set = make(map[string]interface{})
	}
	update.Set["updatedAt"] = time.Now().UnixMilli()
	return update, nil
}

// BaseServiceMongo là interface CRUD chung mà mọi domain service nhúng vào.
// Type parameter Model là kiểu document của collection.
type BaseServiceMongo[Model any] interface {
	InsertOne(ctx context.Context, data Model) (Model, error)

	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)

	// FindOneAndUpdate là thao tác atomic, dùng cho các chuyển trạng thái cần tránh race
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (Model, error)
	UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (Model, error)

	DeleteById(ctx context.Context, id primitive.ObjectID) error

	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên một collection cụ thể
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo base service gắn với một collection
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB, dùng khi domain service cần truy cập trực tiếp
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// InsertOne tạo mới một bản ghi, tự đóng dấu createdAt/updatedAt (UnixMilli)
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	// Loại bỏ field empty string trước khi insert: sparse unique index chỉ
	// bỏ qua field null/không tồn tại, nếu giữ empty string thì document thứ
	// hai sẽ dính duplicate key
	for key, value := range dataMap {
		if strValue, ok := value.(string); ok && strValue == "" {
			delete(dataMap, key)
		}
	}

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	// Đọc lại document vừa tạo để trả về đầy đủ field đã sinh
	var created T
	err = s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      events.OpInsert,
		Document:       created,
	})
	return created, nil
}

// FindOne tìm một document theo filter, trả ErrNotFound nếu không có
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}

	findResult := s.collection.FindOne(ctx, filter, opts)
	if err := findResult.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	if err := findResult.Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		// Lỗi decode BSON là lỗi format, không phải lỗi MongoDB command
		return zero, common.NewError(
			common.ErrCodeValidationFormat,
			"Lỗi định dạng dữ liệu khi decode từ MongoDB",
			common.StatusBadRequest,
			err,
		)
	}

	return result, nil
}

// Find tìm tất cả bản ghi theo filter, luôn trả về slice (không bao giờ nil)
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	} else if filterMap, ok := filter.(map[string]interface{}); ok && len(filterMap) == 0 {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindOneById tìm một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// FindManyByIds tìm nhiều document theo danh sách ID
func (s *BaseServiceMongoImpl[T]) FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	return s.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// FindWithPagination tìm bản ghi theo trang, page tính từ 1
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	opts.SetSkip((page - 1) * limit)
	opts.SetLimit(limit)

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	var items []T
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	// Tổng số trang làm tròn lên
	var totalPage int64
	if total > 0 {
		totalPage = (total + limit - 1) / limit
	}

	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// FindOneAndUpdate tìm và cập nhật một document trong một thao tác atomic.
// Mặc định trả về document SAU khi update (options.After).
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOneAndUpdate().SetReturnDocument(options.After)
	}

	updateData, err := stampUpdate(update)
	if err != nil {
		return zero, err
	}

	var result T
	err = s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      events.OpUpdate,
		Document:       result,
	})
	return result, nil
}

// UpdateById cập nhật một document theo ObjectId.
// data có thể là *UpdateData hoặc struct/map thường (sẽ được wrap vào $set).
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (T, error) {
	var zero T
	filter := bson.M{"_id": id}

	updateData, err := stampUpdate(data)
	if err != nil {
		return zero, err
	}

	result, err := s.collection.UpdateOne(ctx, filter, updateData, options.Update().SetUpsert(false))
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 {
		return zero, common.ErrNotFound
	}

	var updated T
	err = s.collection.FindOne(ctx, filter).Decode(&updated)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      events.OpUpdate,
		Document:       updated,
	})
	return updated, nil
}

// DeleteById xóa một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}

	// Đọc document trước khi xóa để còn dữ liệu emit event
	var existing T
	err := s.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common.ErrNotFound
		}
		return common.ConvertMongoError(err)
	}

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}

	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      events.OpDelete,
		Document:       existing,
	})
	return nil
}

// CountDocuments đếm số document khớp filter
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}
