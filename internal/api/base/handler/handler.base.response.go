package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"shop_commerce/internal/common"
)

// JSONResponse trả JSON với Content-Type application/json; charset=utf-8.
// Charset cần set tường minh để tiếng Việt trong message hiển thị đúng.
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover. Panic trong handler vẫn trả được
// response lỗi 500 cho client thay vì rớt connection.
func (h *BaseHandler[T, CreateInput, UpdateInput]) SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response trả về cho client theo envelope chung
func (h *BaseHandler[T, CreateInput, UpdateInput]) HandleResponse(c fiber.Ctx, data interface{}, err error) {
	HandleResponse(c, data, err)
}

// HandleResponse là bản standalone cho các handler không embed BaseHandler.
// Envelope lỗi: {code, message, details, status: "error"} với HTTP status lấy
// từ common.Error; lỗi không phải common.Error thì coi là lỗi hệ thống 500.
func HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err == nil {
		JSONResponse(c, common.StatusOK, fiber.Map{
			"code":    common.StatusOK,
			"message": common.MsgSuccess,
			"data":    data,
			"status":  "success",
		})
		return
	}

	var customErr *common.Error
	if errors.As(err, &customErr) {
		JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
		return
	}

	JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeDatabase.Code,
		"message": err.Error(),
		"status":  "error",
	})
}
