// Package basehdl cung cấp base handler cho các Fiber handler.
// Package này cung cấp các chức năng CRUD cơ bản và các tiện ích để xử lý request/response.
package basehdl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	basesvc "shop_commerce/internal/api/base/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/utility"
)

// FilterOptions cấu hình cho việc validate filter
type FilterOptions struct {
	DeniedFields     []string // Các trường bị cấm filter
	AllowedOperators []string // Các operator MongoDB được phép
	MaxFields        int      // Số lượng field tối đa trong một filter
}

// BaseHandler là base handler cho các Fiber handler, cung cấp các chức năng CRUD cơ bản.
// Struct này sử dụng Generic Type để có thể tái sử dụng cho nhiều loại model khác nhau.
//
// Type parameters:
// - T: Kiểu dữ liệu của model
// - CreateInput: Kiểu dữ liệu của input khi tạo mới
// - UpdateInput: Kiểu dữ liệu của input khi cập nhật
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T] // Service xử lý logic nghiệp vụ với MongoDB
	filterOptions FilterOptions               // Cấu hình validate filter
}

// NewBaseHandler tạo mới một BaseHandler với BaseService được cung cấp
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: baseService,
		filterOptions: FilterOptions{
			DeniedFields: []string{
				"password",
				"token",
				"secret",
				"key",
				"hash",
			},
			AllowedOperators: []string{
				"$eq",
				"$gt",
				"$gte",
				"$lt",
				"$lte",
				"$in",
				"$nin",
				"$exists",
			},
			MaxFields: 10,
		},
	}
}

// ValidateInput thực hiện validate dữ liệu đầu vào với validator từ global
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ParseRequestBody parse và validate dữ liệu từ request body.
// Sử dụng json.Decoder với UseNumber() để xử lý chính xác các số.
//
// Parameters:
// - c: Fiber context
// - input: Con trỏ tới struct sẽ chứa dữ liệu được parse
//
// Returns:
// - error: Lỗi nếu có trong quá trình parse hoặc validate
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	reader := bytes.NewReader(body)
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	// Validate chi tiết input
	if err := h.ValidateInput(input); err != nil {
		return err
	}

	return nil
}

// ParseRequestParams parse và validate các tham số từ URI.
// Sử dụng Fiber's URI binding để parse các tham số.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestParams(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().URI(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return nil
}

// TransformCreateInputToModel chuyển DTO CreateInput sang Model qua bson marshal/unmarshal.
// Các field trùng bson tag sẽ được map tự động (string hex của ObjectID cần DTO tự xử lý).
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformCreateInputToModel(input *CreateInput) (*T, error) {
	raw, err := bson.Marshal(input)
	if err != nil {
		return nil, err
	}
	var model T
	if err := bson.Unmarshal(raw, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// ProcessFilter xử lý và validate filter từ request
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	var filter map[string]interface{}

	// Parse filter từ query
	filterStr := c.Query("filter", "{}")
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị filter nhận được: %s", err, filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	// Normalize filter: chuyển đổi các string ObjectId thành ObjectID
	filter = h.normalizeFilter(filter)

	// Validate filter
	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}

	return filter, nil
}

// normalizeFilter chuyển đổi các string có format ObjectId thành ObjectID trong filter
// Hỗ trợ các trường có tên kết thúc bằng "Id" hoặc "ID"
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	if filter == nil {
		return filter
	}

	normalized := make(map[string]interface{})
	for field, value := range filter {
		// Kiểm tra nếu field name kết thúc bằng "Id" hoặc "ID" (case-insensitive)
		fieldLower := strings.ToLower(field)
		isIDField := (strings.HasSuffix(fieldLower, "id") && len(fieldLower) > 2) || field == "_id"

		normalized[field] = h.normalizeFilterValue(value, isIDField)
	}

	return normalized
}

// normalizeFilterValue chuyển đổi giá trị trong filter, hỗ trợ nested structures
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilterValue(value interface{}, isIDField bool) interface{} {
	if value == nil {
		return value
	}

	// Hỗ trợ MongoDB Extended JSON format: {"$oid": "..."}
	if mapValue, ok := value.(map[string]interface{}); ok {
		if oidValue, hasOid := mapValue["$oid"]; hasOid {
			if oidStr, ok := oidValue.(string); ok && primitive.IsValidObjectID(oidStr) {
				if objID, err := primitive.ObjectIDFromHex(oidStr); err == nil {
					return objID
				}
			}
			// Nếu $oid không hợp lệ, trả về giá trị gốc
			return value
		}
	}

	// Nếu là string và field là ID field, thử chuyển đổi thành ObjectID
	if strValue, ok := value.(string); ok && isIDField {
		if primitive.IsValidObjectID(strValue) {
			if objID, err := primitive.ObjectIDFromHex(strValue); err == nil {
				return objID
			}
		}
		return strValue
	}

	// Nếu là mảng, xử lý từng phần tử
	if arrValue, ok := value.([]interface{}); ok {
		normalizedArr := make([]interface{}, len(arrValue))
		for i, item := range arrValue {
			normalizedArr[i] = h.normalizeFilterValue(item, isIDField)
		}
		return normalizedArr
	}

	// Nếu là map (cho các operator như $in, $nin, $eq, etc.), xử lý đệ quy
	if mapValue, ok := value.(map[string]interface{}); ok {
		normalizedMap := make(map[string]interface{})
		for key, val := range mapValue {
			normalizedMap[key] = h.normalizeFilterValue(val, isIDField)
		}
		return normalizedMap
	}

	return value
}

// validateFilter kiểm tra tính hợp lệ của filter
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	deniedFields := h.filterOptions.DeniedFields
	allowedOperators := h.filterOptions.AllowedOperators
	maxFields := h.filterOptions.MaxFields
	if maxFields == 0 {
		maxFields = 10
	}

	// Kiểm tra số lượng field
	if len(filter) > maxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter vượt quá số lượng trường cho phép. Tối đa %d trường, hiện tại có %d trường.", maxFields, len(filter)),
			common.StatusBadRequest,
			nil,
		)
	}

	// Kiểm tra từng field và operator
	for field, value := range filter {
		// Kiểm tra field có bị cấm không
		if utility.Contains(deniedFields, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Trường '%s' không được phép sử dụng trong filter vì lý do bảo mật.", field),
				common.StatusBadRequest,
				nil,
			)
		}

		// Kiểm tra operator nếu value là map
		if mapValue, ok := value.(map[string]interface{}); ok {
			for op := range mapValue {
				if strings.HasPrefix(op, "$") && !utility.Contains(allowedOperators, op) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("Toán tử MongoDB '%s' không được phép sử dụng. Các toán tử được phép: %v", op, allowedOperators),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	return nil
}

// parseSortMap chuyển sort map từ JSON thành bson.D, chỉ nhận giá trị 1 hoặc -1
func parseSortMap(sortMap map[string]interface{}) bson.D {
	sortBson := bson.D{}
	for field, value := range sortMap {
		var sortValue int
		switch v := value.(type) {
		case float64:
			sortValue = int(v)
		case int:
			sortValue = v
		case json.Number:
			iv, err := v.Int64()
			if err != nil {
				continue
			}
			sortValue = int(iv)
		default:
			continue
		}
		if sortValue != 1 && sortValue != -1 {
			continue
		}
		sortBson = append(sortBson, bson.E{Key: field, Value: sortValue})
	}
	return sortBson
}

// buildProjection dựng projection bson từ map, loại bỏ các field bị cấm.
// Luôn ẩn các DeniedFields kể cả khi client không yêu cầu projection.
func (h *BaseHandler[T, CreateInput, UpdateInput]) buildProjection(rawProjection map[string]interface{}) bson.M {
	projection := bson.M{}
	for field, value := range rawProjection {
		if utility.Contains(h.filterOptions.DeniedFields, field) {
			continue
		}
		projection[field] = value
	}
	// Các field nhạy cảm luôn bị loại khỏi kết quả
	isInclusion := false
	for _, v := range projection {
		if fv, ok := v.(float64); ok && fv == 1 {
			isInclusion = true
			break
		}
	}
	if !isInclusion {
		for _, field := range h.filterOptions.DeniedFields {
			projection[field] = 0
		}
	}
	return projection
}

// ProcessMongoOptions xử lý options từ query string và chuyển đổi sang MongoDB options.
// isFindOne = true trả về *options.FindOneOptions, ngược lại trả về *options.FindOptions.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessMongoOptions(c fiber.Ctx, isFindOne bool) (interface{}, error) {
	var rawOptions map[string]interface{}

	// Parse options từ query string
	optionsStr := c.Query("options", "{}")
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị options nhận được: %s", err, optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	var projection bson.M
	if rawProjection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		projection = h.buildProjection(rawProjection)
	} else {
		projection = h.buildProjection(map[string]interface{}{})
	}

	var sort bson.D
	if sortMap, ok := rawOptions["sort"].(map[string]interface{}); ok {
		sort = parseSortMap(sortMap)
	}

	if isFindOne {
		opts := mongoopts.FindOne()
		if len(projection) > 0 {
			opts.SetProjection(projection)
		}
		if len(sort) > 0 {
			opts.SetSort(sort)
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if limitVal, ok := rawOptions["limit"].(float64); ok && limitVal > 0 {
		opts.SetLimit(int64(limitVal))
	}
	if skipVal, ok := rawOptions["skip"].(float64); ok && skipVal >= 0 {
		opts.SetSkip(int64(skipVal))
	}
	return opts, nil
}
