package ordersvc

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogsvc "shop_commerce/internal/api/catalog/service"
	orderdto "shop_commerce/internal/api/order/dto"
	models "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/payment"
)

// Các interface hẹp cho phần phụ thuộc của CheckoutService
// Tách interface để test được luồng checkout với fake store/gateway

// PriceResolver tra giá hiện hành của sản phẩm theo id
type PriceResolver interface {
	PriceByIds(ctx context.Context, ids []primitive.ObjectID) (map[string]float64, error)
}

// ChargeStore quản lý vòng đời của pending charge
type ChargeStore interface {
	CreatePending(ctx context.Context, buyer primitive.ObjectID, products []primitive.ObjectID, amount string, nonce string) (models.PendingCharge, error)
	MarkCharged(ctx context.Context, id primitive.ObjectID, txnID string) (models.PendingCharge, error)
	MarkRecorded(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID) (models.PendingCharge, error)
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) (models.PendingCharge, error)
}

// OrderRecorder ghi đơn hàng từ charge đã trừ tiền
type OrderRecorder interface {
	CreateFromCharge(ctx context.Context, charge models.PendingCharge, paymentBlob map[string]interface{}) (models.Order, error)
}

// CheckoutService xử lý luồng thanh toán giỏ hàng
// Luồng: re-price từ catalog -> ghi pending charge -> gọi cổng thanh toán -> ghi đơn hàng
// Tiền chỉ bị trừ SAU khi pending charge đã nằm trên đĩa, nên không bao giờ
// có giao dịch trừ tiền mà hệ thống không biết đến
type CheckoutService struct {
	prices  PriceResolver
	charges ChargeStore
	orders  OrderRecorder
	gateway payment.Gateway
}

// NewCheckoutService tạo mới CheckoutService với các service thật và gateway từ global
func NewCheckoutService() (*CheckoutService, error) {
	productService, err := catalogsvc.NewProductService()
	if err != nil {
		return nil, fmt.Errorf("failed to create product service: %v", err)
	}
	chargeService, err := NewPendingChargeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create pending charge service: %v", err)
	}
	orderService, err := NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}

	return NewCheckoutServiceWith(productService, chargeService, orderService, global.PaymentGateway), nil
}

// NewCheckoutServiceWith tạo CheckoutService với dependencies được inject (dùng cho test)
func NewCheckoutServiceWith(prices PriceResolver, charges ChargeStore, orders OrderRecorder, gateway payment.Gateway) *CheckoutService {
	return &CheckoutService{
		prices:  prices,
		charges: charges,
		orders:  orders,
		gateway: gateway,
	}
}

// ResolveCart chuyển cart từ client thành danh sách ObjectID và tổng tiền theo giá catalog
// Giá client gửi lên bị bỏ qua hoàn toàn; sản phẩm không tồn tại trong catalog là lỗi validate
func (s *CheckoutService) ResolveCart(ctx context.Context, cart []orderdto.CartItem) ([]primitive.ObjectID, float64, error) {
	productIDs := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		if !primitive.IsValidObjectID(item.ID) {
			return nil, 0, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("ID sản phẩm '%s' không đúng định dạng", item.ID),
				common.StatusBadRequest,
				nil,
			)
		}
		id, _ := primitive.ObjectIDFromHex(item.ID)
		productIDs = append(productIDs, id)
	}

	priceMap, err := s.prices.PriceByIds(ctx, productIDs)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, id := range productIDs {
		price, found := priceMap[id.Hex()]
		if !found {
			return nil, 0, common.NewError(
				common.ErrCodeValidationInput,
				fmt.Sprintf("Sản phẩm '%s' không tồn tại trong catalog", id.Hex()),
				common.StatusBadRequest,
				nil,
			)
		}
		total += price
	}

	return productIDs, total, nil
}

// Checkout thực hiện thanh toán giỏ hàng cho người mua đã xác thực
// Trả về đơn hàng đã ghi; nếu ghi đơn thất bại sau khi trừ tiền, charge nằm lại
// ở trạng thái charged cho worker đối soát và trả về nil error với đơn chưa có ID.
// Mọi đường thất bại sau khi pending charge đã tồn tại đều trả refKey của charge
// trong đơn hàng để caller còn trace được giao dịch
func (s *CheckoutService) Checkout(ctx context.Context, buyerID primitive.ObjectID, input *orderdto.CheckoutInput) (models.Order, error) {
	var zero models.Order
	log := logger.GetAppLogger()

	productIDs, total, err := s.ResolveCart(ctx, input.Cart)
	if err != nil {
		return zero, err
	}
	amount := fmt.Sprintf("%.2f", total)

	// Ghi pending charge TRƯỚC khi chạm cổng thanh toán
	charge, err := s.charges.CreatePending(ctx, buyerID, productIDs, amount, input.Nonce)
	if err != nil {
		return zero, err
	}

	log.WithFields(logrus.Fields{
		"ref_key": charge.RefKey,
		"buyer":   buyerID.Hex(),
		"amount":  amount,
	}).Info("🛒 [CHECKOUT] Bắt đầu thanh toán")

	saleResult, err := s.gateway.Sale(ctx, &payment.SaleRequest{
		Amount:             amount,
		PaymentMethodNonce: input.Nonce,
		Options:            payment.SaleOptions{SubmitForSettlement: true},
	})
	if err != nil {
		// Các bước bù trừ dùng context không hủy được: request có thể đã bị
		// client cancel nhưng bản ghi charge vẫn phải được cập nhật
		if _, markErr := s.charges.MarkFailed(context.WithoutCancel(ctx), charge.ID, err.Error()); markErr != nil {
			log.WithError(markErr).WithFields(logrus.Fields{
				"ref_key": charge.RefKey,
			}).Error("🛒 [CHECKOUT] Không thể đánh dấu charge thất bại")
		}
		return models.Order{RefKey: charge.RefKey}, err
	}

	charged, err := s.charges.MarkCharged(context.WithoutCancel(ctx), charge.ID, saleResult.TransactionID)
	if err != nil {
		// Tiền đã bị trừ nhưng không chuyển được trạng thái - không được nuốt lỗi này
		log.WithError(err).WithFields(logrus.Fields{
			"ref_key": charge.RefKey,
			"txn_id":  saleResult.TransactionID,
		}).Error("🛒 [CHECKOUT] Tiền đã trừ nhưng không đánh dấu được charged")
		return models.Order{RefKey: charge.RefKey}, err
	}
	charge = charged

	order, err := s.orders.CreateFromCharge(context.WithoutCancel(ctx), charge, saleResult.Raw)
	if err != nil {
		// Để charge ở trạng thái charged, worker đối soát sẽ tạo lại đơn hàng
		log.WithError(err).WithFields(logrus.Fields{
			"ref_key": charge.RefKey,
			"txn_id":  charge.TxnID,
		}).Error("🛒 [CHECKOUT] Ghi đơn hàng thất bại, chờ worker đối soát")
		return models.Order{RefKey: charge.RefKey}, nil
	}

	if _, err := s.charges.MarkRecorded(context.WithoutCancel(ctx), charge.ID, order.ID); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"ref_key":  charge.RefKey,
			"order_id": order.ID.Hex(),
		}).Warn("🛒 [CHECKOUT] Không đánh dấu được recorded, worker sẽ bỏ qua nhờ refKey")
	}

	log.WithFields(logrus.Fields{
		"ref_key":  charge.RefKey,
		"order_id": order.ID.Hex(),
		"amount":   amount,
	}).Info("🛒 [CHECKOUT] Thanh toán thành công")
	return order, nil
}
