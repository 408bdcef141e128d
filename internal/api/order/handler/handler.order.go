// Package orderhdl - handler cho domain order (token thanh toán, checkout, vòng đời đơn hàng).
package orderhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "shop_commerce/internal/api/base/handler"
	authmodels "shop_commerce/internal/api/auth/models"
	orderdto "shop_commerce/internal/api/order/dto"
	ordermodels "shop_commerce/internal/api/order/models"
	ordersvc "shop_commerce/internal/api/order/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/utility"
)

// OrderHandler xử lý các request liên quan đến thanh toán và đơn hàng
type OrderHandler struct {
	*basehdl.BaseHandler[ordermodels.Order, orderdto.CheckoutInput, orderdto.OrderStatusUpdateInput]
	OrderService    *ordersvc.OrderService
	CheckoutService *ordersvc.CheckoutService
}

// NewOrderHandler tạo mới OrderHandler
func NewOrderHandler() (*OrderHandler, error) {
	orderService, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}
	checkoutService, err := ordersvc.NewCheckoutService()
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout service: %v", err)
	}

	hdl := &OrderHandler{
		OrderService:    orderService,
		CheckoutService: checkoutService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[ordermodels.Order, orderdto.CheckoutInput, orderdto.OrderStatusUpdateInput](orderService.BaseServiceMongoImpl)
	return hdl, nil
}

// currentUser lấy user đã xác thực từ context (do AuthMiddleware đặt vào)
func currentUser(c fiber.Ctx) (authmodels.User, error) {
	user, ok := c.Locals("user").(authmodels.User)
	if !ok {
		return authmodels.User{}, common.ErrTokenInvalid
	}
	return user, nil
}

// HandleGetToken phát hành client token cho frontend khởi tạo drop-in UI thanh toán
// Blob token của cổng thanh toán được trả nguyên vẹn trong data
func (h *OrderHandler) HandleGetToken(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		token, err := global.PaymentGateway.GenerateToken(c.Context())
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, token.Raw, nil)
		return nil
	})
}

// HandleCheckout xử lý thanh toán giỏ hàng
// Body: {nonce, cart: [{_id, price}]}. Người mua lấy từ context xác thực,
// không bao giờ lấy từ body. Thành công trả về {ok: true}
func (h *OrderHandler) HandleCheckout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		input := new(orderdto.CheckoutInput)
		if err := h.ParseRequestBody(c, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		order, err := h.CheckoutService.Checkout(c.Context(), user.ID, input)
		if err != nil {
			// Thất bại trước khi có pending charge thì chưa có refKey,
			// dùng request id làm định danh trace thay thế
			ref := order.RefKey
			if ref == "" {
				ref = c.Get("X-Request-ID")
			}
			logger.LogPayment("sale_failed", ref, c, map[string]interface{}{
				"error": err.Error(),
			})
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogPayment("sale", order.RefKey, c, map[string]interface{}{
			"order_id": order.ID.Hex(),
		})
		h.HandleResponse(c, orderdto.CheckoutResult{Ok: true}, nil)
		return nil
	})
}

// HandleBuyerOrders trả về các đơn hàng của người mua đang đăng nhập
// Sản phẩm và người mua được resolve sẵn (không lộ password của buyer)
func (h *OrderHandler) HandleBuyerOrders(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		orders, err := h.OrderService.ListOrdersForBuyer(c.Context(), user.ID)
		h.HandleResponse(c, orders, err)
		return nil
	})
}

// HandleAllOrders trả về tất cả đơn hàng, mới nhất trước
// Route đã được gate bởi RequireAdmin, handler coi như caller là admin
func (h *OrderHandler) HandleAllOrders(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orders, err := h.OrderService.ListAllOrders(c.Context())
		h.HandleResponse(c, orders, err)
		return nil
	})
}

// HandleUpdateStatus cập nhật trạng thái đơn hàng (admin)
// Body: {status}. Status phải thuộc đúng tập giá trị hợp lệ, phân biệt hoa thường
func (h *OrderHandler) HandleUpdateStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var params orderdto.OrderStatusParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if !primitive.IsValidObjectID(params.OrderID) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", params.OrderID),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		input := new(orderdto.OrderStatusUpdateInput)
		if err := h.ParseRequestBody(c, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		order, err := h.OrderService.UpdateOrderStatus(c.Context(), utility.String2ObjectID(params.OrderID), input.Status)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogOrder("status_update", order.ID.Hex(), c, map[string]interface{}{
			"status": order.Status,
		})
		h.HandleResponse(c, order, nil)
		return nil
	})
}
