package basehdl

// Package basehdl - base CRUD handlers.
// Các handler CRUD generic dùng chung cho mọi model, domain handler chỉ cần khai báo route.

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"shop_commerce/internal/common"
	"shop_commerce/internal/utility"
)

// objectIDParam đọc param :id và validate định dạng ObjectID.
// Trả về *common.Error đã sẵn sàng đưa vào HandleResponse khi param hỏng.
func objectIDParam(c fiber.Ctx) (primitive.ObjectID, *common.Error) {
	id := c.Params("id")
	if id == "" {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID không được để trống trong URL params",
			common.StatusBadRequest,
			nil,
		)
	}
	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id),
			common.StatusBadRequest,
			nil,
		)
	}
	return utility.String2ObjectID(id), nil
}

// bodyError bọc lỗi parse body thành lỗi validation thống nhất
func bodyError(err error) *common.Error {
	return common.NewError(
		common.ErrCodeValidationFormat,
		fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
		common.StatusBadRequest,
		err,
	)
}

// InsertOne thêm mới một document.
// Body được parse thành DTO CreateInput rồi transform sang Model trước khi ghi DB.
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input CreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, bodyError(err))
			return nil
		}

		model, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		data, err := h.BaseService.InsertOne(c.Context(), *model)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOne tìm một document theo filter.
// Filter và options truyền qua query string dưới dạng JSON,
// ví dụ options: {"projection": {"field": 1}, "sort": {"field": 1}}
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.ProcessMongoOptions(c, true)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.FindOne(c.Context(), filter, options.(*mongoopts.FindOneOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOneById tìm một document theo ID trong URI params
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, idErr := objectIDParam(c)
		if idErr != nil {
			h.HandleResponse(c, nil, idErr)
			return nil
		}

		data, err := h.BaseService.FindOneById(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// Find tìm nhiều document theo filter trong query string
func (h *BaseHandler[T, CreateInput, UpdateInput]) Find(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.ProcessMongoOptions(c, false)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.Find(c.Context(), filter, options.(*mongoopts.FindOptions))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Client luôn nhận mảng, kể cả khi không có kết quả
		if data == nil {
			data = []T{}
		}

		h.HandleResponse(c, data, nil)
		return nil
	})
}

// FindWithPagination tìm nhiều document với phân trang.
//
// Query params:
//   - filter: điều kiện tìm kiếm (JSON)
//   - options: tùy chọn tìm kiếm (JSON)
//   - page: số trang (mặc định 1)
//   - limit: số item mỗi trang (mặc định 10)
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindWithPagination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.ProcessMongoOptions(c, false)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
		if err != nil || limit <= 0 {
			limit = 10
		}

		// Skip/limit do service tự set để giữ tính nhất quán
		data, err := h.BaseService.FindWithPagination(c.Context(), filter, page, limit, options.(*mongoopts.FindOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// UpdateById cập nhật một document theo ID.
// Chỉ update các trường có trong UpdateInput, giữ nguyên các trường khác.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, idErr := objectIDParam(c)
		if idErr != nil {
			h.HandleResponse(c, nil, idErr)
			return nil
		}

		var input UpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, bodyError(err))
			return nil
		}

		data, err := h.BaseService.UpdateById(c.Context(), id, input)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// DeleteById xóa một document theo ID trong URI params
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, idErr := objectIDParam(c)
		if idErr != nil {
			h.HandleResponse(c, nil, idErr)
			return nil
		}

		err := h.BaseService.DeleteById(c.Context(), id)
		h.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
		return nil
	})
}

// CountDocuments đếm số document theo filter trong query string
func (h *BaseHandler[T, CreateInput, UpdateInput]) CountDocuments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		count, err := h.BaseService.CountDocuments(c.Context(), filter)
		h.HandleResponse(c, fiber.Map{"totalCount": count}, err)
		return nil
	})
}
