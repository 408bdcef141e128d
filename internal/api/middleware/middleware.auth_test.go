// Package middleware - Test phân quyền admin qua app.Test (không cần MongoDB)
package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	models "shop_commerce/internal/api/auth/models"
	"shop_commerce/internal/common"
)

// seedUser giả lập AuthMiddleware đã chạy xong và lưu user vào context
func seedUser(user models.User) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)
		return c.Next()
	}
}

func adminTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	final := func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	}
	app.Get("/admin-only", final, handlers...)
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("Body phải là JSON hợp lệ: %v", err)
	}
	return payload
}

func TestRequireAdmin_BuyerDenied(t *testing.T) {
	buyer := models.User{Role: models.RoleBuyer}
	app := adminTestApp(seedUser(buyer), RequireAdmin())

	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusUnauthorized {
		t.Fatalf("Người mua gọi route admin phải nhận 401, nhận %d", resp.StatusCode)
	}

	// Client hiện có parse đúng format cũ nên body phải giữ nguyên từng trường
	payload := decodeBody(t, resp.Body)
	if success, ok := payload["success"].(bool); !ok || success {
		t.Errorf("Body phải có success=false, nhận %v", payload["success"])
	}
	if payload["message"] != common.MsgUnAuthorizedAccess {
		t.Errorf("Message phải giữ nguyên %q, nhận %v", common.MsgUnAuthorizedAccess, payload["message"])
	}
}

func TestRequireAdmin_NoUserInContext(t *testing.T) {
	// Route admin đăng ký thiếu AuthMiddleware thì vẫn phải chặn
	app := adminTestApp(RequireAdmin())

	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusUnauthorized {
		t.Fatalf("Không có user trong context phải nhận 401, nhận %d", resp.StatusCode)
	}
	payload := decodeBody(t, resp.Body)
	if payload["message"] != common.MsgUnAuthorizedAccess {
		t.Errorf("Message phải giữ nguyên %q, nhận %v", common.MsgUnAuthorizedAccess, payload["message"])
	}
}

func TestRequireAdmin_AdminPassesThrough(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin}
	app := adminTestApp(seedUser(admin), RequireAdmin())

	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusOK {
		t.Fatalf("Admin phải đi qua middleware, nhận %d", resp.StatusCode)
	}
	payload := decodeBody(t, resp.Body)
	if success, ok := payload["success"].(bool); !ok || !success {
		t.Errorf("Handler phía sau phải được gọi, body: %v", payload)
	}
}
