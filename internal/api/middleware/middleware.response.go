package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"shop_commerce/internal/common"
)

// JSONResponse trả JSON với charset=utf-8 để message tiếng Việt hiển thị đúng
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// HandleErrorResponse trả envelope lỗi giống basehdl.HandleResponse.
// Bản copy nhỏ này nằm ở middleware để tránh import cycle với handler package.
func HandleErrorResponse(c fiber.Ctx, err error) {
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
	// Lỗi không phải common.Error thì coi là lỗi hệ thống
	JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeDatabase.Code,
		"message": err.Error(),
		"status":  "error",
	})
}
