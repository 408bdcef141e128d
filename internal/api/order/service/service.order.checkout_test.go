// Package ordersvc - Test luồng checkout với fake store/gateway (không cần MongoDB)
package ordersvc

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	orderdto "shop_commerce/internal/api/order/dto"
	models "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/common"
	"shop_commerce/internal/payment"
)

// ==========================================
// FAKES
// ==========================================

type fakePriceResolver struct {
	prices map[string]float64
	err    error
}

func (f *fakePriceResolver) PriceByIds(ctx context.Context, ids []primitive.ObjectID) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]float64)
	for _, id := range ids {
		if price, ok := f.prices[id.Hex()]; ok {
			result[id.Hex()] = price
		}
	}
	return result, nil
}

type fakeChargeStore struct {
	calls []string

	createErr   error
	chargedErr  error
	recordedErr error
	failedErr   error

	lastAmount       string
	lastNonce        string
	lastTxnID        string
	lastFailedReason string

	charge models.PendingCharge
}

func (f *fakeChargeStore) CreatePending(ctx context.Context, buyer primitive.ObjectID, products []primitive.ObjectID, amount string, nonce string) (models.PendingCharge, error) {
	f.calls = append(f.calls, "CreatePending")
	f.lastAmount = amount
	f.lastNonce = nonce
	if f.createErr != nil {
		return models.PendingCharge{}, f.createErr
	}
	f.charge = models.PendingCharge{
		ID:       primitive.NewObjectID(),
		RefKey:   "ref-test",
		Buyer:    buyer,
		Products: products,
		Amount:   amount,
		State:    models.PendingChargeStatePending,
	}
	return f.charge, nil
}

func (f *fakeChargeStore) MarkCharged(ctx context.Context, id primitive.ObjectID, txnID string) (models.PendingCharge, error) {
	f.calls = append(f.calls, "MarkCharged")
	f.lastTxnID = txnID
	if f.chargedErr != nil {
		return models.PendingCharge{}, f.chargedErr
	}
	f.charge.State = models.PendingChargeStateCharged
	f.charge.TxnID = txnID
	return f.charge, nil
}

func (f *fakeChargeStore) MarkRecorded(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID) (models.PendingCharge, error) {
	f.calls = append(f.calls, "MarkRecorded")
	if f.recordedErr != nil {
		return models.PendingCharge{}, f.recordedErr
	}
	f.charge.State = models.PendingChargeStateRecorded
	f.charge.OrderID = orderID
	return f.charge, nil
}

func (f *fakeChargeStore) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) (models.PendingCharge, error) {
	f.calls = append(f.calls, "MarkFailed")
	f.lastFailedReason = reason
	if f.failedErr != nil {
		return models.PendingCharge{}, f.failedErr
	}
	f.charge.State = models.PendingChargeStateFailed
	return f.charge, nil
}

type fakeOrderRecorder struct {
	calls    int
	err      error
	lastBlob map[string]interface{}
	order    models.Order
}

func (f *fakeOrderRecorder) CreateFromCharge(ctx context.Context, charge models.PendingCharge, paymentBlob map[string]interface{}) (models.Order, error) {
	f.calls++
	f.lastBlob = paymentBlob
	if f.err != nil {
		return models.Order{}, f.err
	}
	f.order = models.Order{
		ID:       primitive.NewObjectID(),
		Products: charge.Products,
		Buyer:    charge.Buyer,
		Payment:  paymentBlob,
		Status:   common.OrderStatusNotProcess,
		RefKey:   charge.RefKey,
	}
	return f.order, nil
}

type fakeGateway struct {
	saleCalls   int
	saleErr     error
	saleRequest *payment.SaleRequest
	refundCalls int
	refundErr   error
	lastRefund  string
}

func (f *fakeGateway) GenerateToken(ctx context.Context) (*payment.TokenResult, error) {
	return &payment.TokenResult{ClientToken: "fake-token", Raw: map[string]interface{}{"clientToken": "fake-token"}}, nil
}

func (f *fakeGateway) Sale(ctx context.Context, req *payment.SaleRequest) (*payment.SaleResult, error) {
	f.saleCalls++
	f.saleRequest = req
	if f.saleErr != nil {
		return nil, f.saleErr
	}
	return &payment.SaleResult{
		Success:       true,
		TransactionID: "txn-123",
		Raw: map[string]interface{}{
			"success":     true,
			"transaction": map[string]interface{}{"id": "txn-123"},
		},
	}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, transactionID string, amount string) error {
	f.refundCalls++
	f.lastRefund = transactionID
	return f.refundErr
}

// ==========================================
// RESOLVE CART
// ==========================================

func TestResolveCart_IgnoresClientPrices(t *testing.T) {
	id1 := primitive.NewObjectID()
	id2 := primitive.NewObjectID()

	prices := &fakePriceResolver{prices: map[string]float64{
		id1.Hex(): 100.50,
		id2.Hex(): 25.00,
	}}
	svc := NewCheckoutServiceWith(prices, &fakeChargeStore{}, &fakeOrderRecorder{}, &fakeGateway{})

	// Client gửi giá 0.01 - phải bị bỏ qua, tổng lấy từ catalog
	cart := []orderdto.CartItem{
		{ID: id1.Hex(), Price: 0.01},
		{ID: id2.Hex(), Price: 0.01},
	}

	ids, total, err := svc.ResolveCart(context.Background(), cart)
	if err != nil {
		t.Fatalf("ResolveCart lỗi: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Phải resolve đủ 2 sản phẩm, có %d", len(ids))
	}
	if total != 125.50 {
		t.Errorf("Tổng phải tính từ giá catalog (125.50), nhận %v", total)
	}
}

func TestResolveCart_CountsDuplicates(t *testing.T) {
	id := primitive.NewObjectID()
	prices := &fakePriceResolver{prices: map[string]float64{id.Hex(): 10.00}}
	svc := NewCheckoutServiceWith(prices, &fakeChargeStore{}, &fakeOrderRecorder{}, &fakeGateway{})

	cart := []orderdto.CartItem{{ID: id.Hex()}, {ID: id.Hex()}, {ID: id.Hex()}}
	_, total, err := svc.ResolveCart(context.Background(), cart)
	if err != nil {
		t.Fatalf("ResolveCart lỗi: %v", err)
	}
	if total != 30.00 {
		t.Errorf("Sản phẩm trùng phải được tính từng dòng, tổng phải là 30.00, nhận %v", total)
	}
}

func TestResolveCart_InvalidObjectID(t *testing.T) {
	svc := NewCheckoutServiceWith(&fakePriceResolver{}, &fakeChargeStore{}, &fakeOrderRecorder{}, &fakeGateway{})

	_, _, err := svc.ResolveCart(context.Background(), []orderdto.CartItem{{ID: "not-an-objectid"}})
	if err == nil {
		t.Fatal("ID sai định dạng phải trả về lỗi")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("Lỗi phải là *common.Error, nhận %T", err)
	}
	if customErr.StatusCode != common.StatusBadRequest {
		t.Errorf("Status phải là 400, nhận %d", customErr.StatusCode)
	}
}

func TestResolveCart_ProductNotInCatalog(t *testing.T) {
	known := primitive.NewObjectID()
	unknown := primitive.NewObjectID()

	prices := &fakePriceResolver{prices: map[string]float64{known.Hex(): 5.00}}
	svc := NewCheckoutServiceWith(prices, &fakeChargeStore{}, &fakeOrderRecorder{}, &fakeGateway{})

	_, _, err := svc.ResolveCart(context.Background(), []orderdto.CartItem{
		{ID: known.Hex()},
		{ID: unknown.Hex()},
	})
	if err == nil {
		t.Fatal("Sản phẩm không có trong catalog phải trả về lỗi")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("Lỗi phải là *common.Error, nhận %T", err)
	}
	if customErr.StatusCode != common.StatusBadRequest {
		t.Errorf("Status phải là 400, nhận %d", customErr.StatusCode)
	}
}

// ==========================================
// CHECKOUT
// ==========================================

func checkoutFixture() (primitive.ObjectID, *orderdto.CheckoutInput, *fakePriceResolver) {
	productID := primitive.NewObjectID()
	buyerID := primitive.NewObjectID()
	input := &orderdto.CheckoutInput{
		Nonce: "fake-valid-nonce",
		Cart:  []orderdto.CartItem{{ID: productID.Hex(), Price: 0.01}},
	}
	prices := &fakePriceResolver{prices: map[string]float64{productID.Hex(): 42.10}}
	return buyerID, input, prices
}

func TestCheckout_Success(t *testing.T) {
	buyerID, input, prices := checkoutFixture()
	charges := &fakeChargeStore{}
	orders := &fakeOrderRecorder{}
	gateway := &fakeGateway{}
	svc := NewCheckoutServiceWith(prices, charges, orders, gateway)

	order, err := svc.Checkout(context.Background(), buyerID, input)
	if err != nil {
		t.Fatalf("Checkout lỗi: %v", err)
	}

	// Pending charge phải được ghi TRƯỚC khi gọi cổng thanh toán
	if len(charges.calls) == 0 || charges.calls[0] != "CreatePending" {
		t.Fatalf("CreatePending phải là bước đầu tiên, calls: %v", charges.calls)
	}
	if charges.lastAmount != "42.10" {
		t.Errorf("Amount phải format 2 chữ số thập phân từ giá catalog, nhận %q", charges.lastAmount)
	}
	if gateway.saleCalls != 1 {
		t.Errorf("Sale phải được gọi đúng 1 lần, gọi %d lần", gateway.saleCalls)
	}
	if gateway.saleRequest.PaymentMethodNonce != input.Nonce {
		t.Errorf("Nonce gửi gateway không khớp: %q", gateway.saleRequest.PaymentMethodNonce)
	}
	if !gateway.saleRequest.Options.SubmitForSettlement {
		t.Error("Sale phải submit for settlement")
	}
	if charges.lastTxnID != "txn-123" {
		t.Errorf("MarkCharged phải nhận transaction id từ gateway, nhận %q", charges.lastTxnID)
	}
	if orders.calls != 1 {
		t.Errorf("CreateFromCharge phải được gọi đúng 1 lần, gọi %d lần", orders.calls)
	}
	if order.RefKey != "ref-test" {
		t.Errorf("Đơn hàng phải mang refKey của charge, nhận %q", order.RefKey)
	}

	last := charges.calls[len(charges.calls)-1]
	if last != "MarkRecorded" {
		t.Errorf("Bước cuối cùng phải là MarkRecorded, calls: %v", charges.calls)
	}
}

func TestCheckout_GatewayDeclined(t *testing.T) {
	buyerID, input, prices := checkoutFixture()
	charges := &fakeChargeStore{}
	orders := &fakeOrderRecorder{}
	gateway := &fakeGateway{
		saleErr: common.NewError(common.ErrCodePaymentDeclined, "Thẻ bị từ chối", common.StatusInternalServerError, nil),
	}
	svc := NewCheckoutServiceWith(prices, charges, orders, gateway)

	order, err := svc.Checkout(context.Background(), buyerID, input)
	if err == nil {
		t.Fatal("Sale thất bại thì Checkout phải trả về lỗi")
	}
	if order.RefKey != "ref-test" {
		t.Errorf("Sale thất bại vẫn phải trả refKey của charge để trace, nhận %q", order.RefKey)
	}
	if orders.calls != 0 {
		t.Error("Không được ghi đơn hàng khi sale thất bại")
	}

	foundFailed := false
	for _, call := range charges.calls {
		if call == "MarkFailed" {
			foundFailed = true
		}
		if call == "MarkCharged" || call == "MarkRecorded" {
			t.Errorf("Không được đánh dấu charged/recorded khi sale thất bại, calls: %v", charges.calls)
		}
	}
	if !foundFailed {
		t.Errorf("Charge phải được đánh dấu failed, calls: %v", charges.calls)
	}
	if charges.lastFailedReason == "" {
		t.Error("Lý do thất bại phải được lưu vào charge")
	}
}

func TestCheckout_DuplicateNonce(t *testing.T) {
	buyerID, input, prices := checkoutFixture()
	charges := &fakeChargeStore{createErr: common.ErrNonceAlreadyUsed}
	gateway := &fakeGateway{}
	svc := NewCheckoutServiceWith(prices, charges, &fakeOrderRecorder{}, gateway)

	_, err := svc.Checkout(context.Background(), buyerID, input)
	if !errors.Is(err, common.ErrNonceAlreadyUsed) {
		t.Fatalf("Nonce trùng phải trả về ErrNonceAlreadyUsed, nhận %v", err)
	}
	// Nonce trùng không bao giờ được chạm đến cổng thanh toán
	if gateway.saleCalls != 0 {
		t.Errorf("Gateway không được gọi khi nonce trùng, gọi %d lần", gateway.saleCalls)
	}
}

func TestCheckout_OrderWriteFailsAfterCharge(t *testing.T) {
	buyerID, input, prices := checkoutFixture()
	charges := &fakeChargeStore{}
	orders := &fakeOrderRecorder{err: common.ErrMongoConnection}
	gateway := &fakeGateway{}
	svc := NewCheckoutServiceWith(prices, charges, orders, gateway)

	order, err := svc.Checkout(context.Background(), buyerID, input)
	// Tiền đã bị trừ nên không trả lỗi cho client; charge nằm lại ở charged cho worker
	if err != nil {
		t.Fatalf("Ghi đơn thất bại sau khi trừ tiền không được trả lỗi, nhận %v", err)
	}
	if !order.ID.IsZero() {
		t.Error("Đơn hàng trả về phải rỗng khi ghi đơn thất bại")
	}
	if order.RefKey != "ref-test" {
		t.Errorf("Ghi đơn thất bại vẫn phải trả refKey của charge để trace, nhận %q", order.RefKey)
	}
	if charges.charge.State != models.PendingChargeStateCharged {
		t.Errorf("Charge phải nằm lại ở trạng thái charged, nhận %q", charges.charge.State)
	}
	for _, call := range charges.calls {
		if call == "MarkRecorded" {
			t.Errorf("Không được đánh dấu recorded khi chưa có đơn hàng, calls: %v", charges.calls)
		}
	}
}

func TestCheckout_MarkChargedFails(t *testing.T) {
	buyerID, input, prices := checkoutFixture()
	charges := &fakeChargeStore{chargedErr: common.ErrMongoConnection}
	orders := &fakeOrderRecorder{}
	svc := NewCheckoutServiceWith(prices, charges, orders, &fakeGateway{})

	order, err := svc.Checkout(context.Background(), buyerID, input)
	if err == nil {
		t.Fatal("Không đánh dấu được charged thì phải trả lỗi, không được nuốt")
	}
	if order.RefKey != "ref-test" {
		t.Errorf("Lỗi sau khi trừ tiền vẫn phải trả refKey của charge, nhận %q", order.RefKey)
	}
	if orders.calls != 0 {
		t.Error("Không được ghi đơn hàng khi chưa chuyển được trạng thái charged")
	}
}
