// Package worker - Test đối soát charge kẹt với fake store/gateway
package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/common"
	"shop_commerce/internal/payment"
)

type stubChargeStore struct {
	stuck []models.PendingCharge

	recordedIDs []primitive.ObjectID
	failedIDs   []primitive.ObjectID
	attempts    map[string]int

	findErr error
}

func newStubChargeStore(stuck ...models.PendingCharge) *stubChargeStore {
	return &stubChargeStore{stuck: stuck, attempts: make(map[string]int)}
}

func (s *stubChargeStore) FindStuckCharges(ctx context.Context, olderThanMs int64) ([]models.PendingCharge, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.stuck, nil
}

func (s *stubChargeStore) MarkRecorded(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID) (models.PendingCharge, error) {
	s.recordedIDs = append(s.recordedIDs, id)
	return models.PendingCharge{ID: id, State: models.PendingChargeStateRecorded, OrderID: orderID}, nil
}

func (s *stubChargeStore) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) (models.PendingCharge, error) {
	s.failedIDs = append(s.failedIDs, id)
	return models.PendingCharge{ID: id, State: models.PendingChargeStateFailed, LastError: reason}, nil
}

func (s *stubChargeStore) RecordAttempt(ctx context.Context, id primitive.ObjectID, attempts int, lastError string) (models.PendingCharge, error) {
	s.attempts[id.Hex()] = attempts
	return models.PendingCharge{ID: id, Attempts: attempts, LastError: lastError}, nil
}

type stubOrderRecorder struct {
	calls int
	err   error
}

func (s *stubOrderRecorder) CreateFromCharge(ctx context.Context, charge models.PendingCharge, paymentBlob map[string]interface{}) (models.Order, error) {
	s.calls++
	if s.err != nil {
		return models.Order{}, s.err
	}
	return models.Order{
		ID:      primitive.NewObjectID(),
		Buyer:   charge.Buyer,
		Payment: paymentBlob,
		RefKey:  charge.RefKey,
	}, nil
}

type stubGateway struct {
	refundCalls int
	refundTxns  []string
	refundErr   error
}

func (s *stubGateway) GenerateToken(ctx context.Context) (*payment.TokenResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Sale(ctx context.Context, req *payment.SaleRequest) (*payment.SaleResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Refund(ctx context.Context, transactionID string, amount string) error {
	s.refundCalls++
	s.refundTxns = append(s.refundTxns, transactionID)
	return s.refundErr
}

func stuckCharge(attempts int) models.PendingCharge {
	return models.PendingCharge{
		ID:       primitive.NewObjectID(),
		RefKey:   "ref-stuck",
		Buyer:    primitive.NewObjectID(),
		Amount:   "15.00",
		State:    models.PendingChargeStateCharged,
		TxnID:    "txn-stuck",
		Attempts: attempts,
	}
}

func TestReconcileOnce_RecreatesOrder(t *testing.T) {
	charge := stuckCharge(0)
	charges := newStubChargeStore(charge)
	orders := &stubOrderRecorder{}
	gateway := &stubGateway{}

	w := NewChargeReconcileWorkerWith(charges, orders, gateway, 5*time.Minute, 5)
	w.ReconcileOnce(context.Background())

	if orders.calls != 1 {
		t.Fatalf("Charge kẹt phải được ghi lại đơn hàng, calls=%d", orders.calls)
	}
	if len(charges.recordedIDs) != 1 || charges.recordedIDs[0] != charge.ID {
		t.Errorf("Charge phải được đánh dấu recorded sau khi ghi đơn, recordedIDs=%v", charges.recordedIDs)
	}
	if gateway.refundCalls != 0 {
		t.Error("Không được hoàn tiền khi chưa hết số lần thử")
	}
}

func TestReconcileOnce_RecordsAttemptOnFailure(t *testing.T) {
	charge := stuckCharge(2)
	charges := newStubChargeStore(charge)
	orders := &stubOrderRecorder{err: common.ErrMongoConnection}
	gateway := &stubGateway{}

	w := NewChargeReconcileWorkerWith(charges, orders, gateway, 5*time.Minute, 5)
	w.ReconcileOnce(context.Background())

	if got := charges.attempts[charge.ID.Hex()]; got != 3 {
		t.Errorf("Lần thử thất bại phải tăng attempts lên 3, nhận %d", got)
	}
	if len(charges.recordedIDs) != 0 {
		t.Error("Không được đánh dấu recorded khi ghi đơn thất bại")
	}
	if len(charges.failedIDs) != 0 {
		t.Error("Chưa hết số lần thử thì không được đánh dấu failed")
	}
	if gateway.refundCalls != 0 {
		t.Error("Chưa hết số lần thử thì không được hoàn tiền")
	}
}

func TestReconcileOnce_RefundsAfterMaxAttempts(t *testing.T) {
	charge := stuckCharge(5)
	charges := newStubChargeStore(charge)
	orders := &stubOrderRecorder{}
	gateway := &stubGateway{}

	w := NewChargeReconcileWorkerWith(charges, orders, gateway, 5*time.Minute, 5)
	w.ReconcileOnce(context.Background())

	if gateway.refundCalls != 1 {
		t.Fatalf("Hết số lần thử phải hoàn tiền, refundCalls=%d", gateway.refundCalls)
	}
	if gateway.refundTxns[0] != "txn-stuck" {
		t.Errorf("Hoàn tiền phải dùng transaction id của charge, nhận %q", gateway.refundTxns[0])
	}
	if len(charges.failedIDs) != 1 || charges.failedIDs[0] != charge.ID {
		t.Errorf("Charge phải được đánh dấu failed sau khi hoàn tiền, failedIDs=%v", charges.failedIDs)
	}
	if orders.calls != 0 {
		t.Error("Không được ghi đơn hàng cho charge đã hết số lần thử")
	}
}

func TestReconcileOnce_RefundFailureKeepsCharge(t *testing.T) {
	charge := stuckCharge(5)
	charges := newStubChargeStore(charge)
	gateway := &stubGateway{refundErr: errors.New("gateway unavailable")}

	w := NewChargeReconcileWorkerWith(charges, &stubOrderRecorder{}, gateway, 5*time.Minute, 5)
	w.ReconcileOnce(context.Background())

	// Hoàn tiền thất bại thì charge phải giữ nguyên để thử lại lần sau
	if len(charges.failedIDs) != 0 {
		t.Errorf("Không được đánh dấu failed khi hoàn tiền thất bại, failedIDs=%v", charges.failedIDs)
	}
}

func TestNewChargeReconcileWorkerWith_Defaults(t *testing.T) {
	w := NewChargeReconcileWorkerWith(newStubChargeStore(), &stubOrderRecorder{}, &stubGateway{}, 0, 0)
	if w.interval != 5*time.Minute {
		t.Errorf("Interval không hợp lệ phải default 5 phút, nhận %v", w.interval)
	}
	if w.maxAttempts != 5 {
		t.Errorf("MaxAttempts không hợp lệ phải default 5, nhận %d", w.maxAttempts)
	}
}
