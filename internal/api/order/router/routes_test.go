// Package router - Test mức bảo vệ của từng route order qua app.Test (không cần MongoDB)
package router

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo"

	apirouter "shop_commerce/internal/api/router"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/payment"
)

type stubGateway struct{}

func (stubGateway) GenerateToken(ctx context.Context) (*payment.TokenResult, error) {
	return &payment.TokenResult{
		ClientToken: "stub-client-token",
		Raw:         map[string]interface{}{"clientToken": "stub-client-token"},
	}, nil
}

func (stubGateway) Sale(ctx context.Context, req *payment.SaleRequest) (*payment.SaleResult, error) {
	return &payment.SaleResult{Success: true}, nil
}

func (stubGateway) Refund(ctx context.Context, transactionID string, amount string) error {
	return nil
}

// setupOrderApp dựng app với đầy đủ route order. Các collection đăng ký là nil:
// các test ở đây chỉ đi đến tầng middleware hoặc gateway, không chạm database.
func setupOrderApp(t *testing.T) *fiber.App {
	t.Helper()

	global.MongoDB_ColNames.Users = "users"
	global.MongoDB_ColNames.CatalogProducts = "catalog_products"
	global.MongoDB_ColNames.CatalogCategories = "catalog_categories"
	global.MongoDB_ColNames.ShopOrders = "shop_orders"
	global.MongoDB_ColNames.ShopPendingCharges = "shop_pending_charges"

	for _, name := range []string{
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.CatalogProducts,
		global.MongoDB_ColNames.CatalogCategories,
		global.MongoDB_ColNames.ShopOrders,
		global.MongoDB_ColNames.ShopPendingCharges,
	} {
		if _, err := global.RegistryCollections.Register(name, (*mongo.Collection)(nil)); err != nil {
			t.Fatalf("Không đăng ký được collection %s: %v", name, err)
		}
	}
	global.PaymentGateway = stubGateway{}

	app := fiber.New()
	prefix := apirouter.NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	if err := Register(v1, apirouter.NewRouter(app)); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}
	return app
}

func TestTokenRouteIsPublic(t *testing.T) {
	app := setupOrderApp(t)

	// Không gửi Authorization: route token phải phục vụ được client chưa đăng nhập
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/product/braintree/token", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusOK {
		t.Fatalf("Route token không được yêu cầu đăng nhập, nhận %d", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Body phải là JSON hợp lệ: %v", err)
	}
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Envelope phải có data, nhận %v", payload)
	}
	if data["clientToken"] != "stub-client-token" {
		t.Errorf("Data phải chứa clientToken từ gateway, nhận %v", data)
	}
}

func TestPaymentRouteRequiresAuth(t *testing.T) {
	app := setupOrderApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/product/braintree/payment", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusUnauthorized {
		t.Errorf("Route payment thiếu token phải nhận 401, nhận %d", resp.StatusCode)
	}
}

func TestBuyerOrdersRouteRequiresAuth(t *testing.T) {
	app := setupOrderApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/auth/orders", nil))
	if err != nil {
		t.Fatalf("app.Test thất bại: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != common.StatusUnauthorized {
		t.Errorf("Route danh sách đơn hàng thiếu token phải nhận 401, nhận %d", resp.StatusCode)
	}
}
