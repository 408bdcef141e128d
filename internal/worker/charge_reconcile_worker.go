// Package worker chứa các worker chạy nền định kỳ.
package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "shop_commerce/internal/api/order/models"
	ordersvc "shop_commerce/internal/api/order/service"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/payment"
	"shop_commerce/internal/utility"
)

// Thời gian ân hạn trước khi một charge ở trạng thái charged bị coi là kẹt
// (tránh đụng vào charge mà request checkout vẫn đang xử lý)
const reconcileGracePeriod = 10 * time.Minute

// reconcileChargeStore là phần ChargeStore mà worker cần
type reconcileChargeStore interface {
	FindStuckCharges(ctx context.Context, olderThanMs int64) ([]models.PendingCharge, error)
	MarkRecorded(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID) (models.PendingCharge, error)
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) (models.PendingCharge, error)
	RecordAttempt(ctx context.Context, id primitive.ObjectID, attempts int, lastError string) (models.PendingCharge, error)
}

// ChargeReconcileWorker đối soát các charge đã trừ tiền nhưng chưa có đơn hàng:
// thử ghi lại đơn hàng (idempotent nhờ unique index trên refKey), và sau khi
// vượt quá số lần thử tối đa thì hoàn tiền qua cổng thanh toán rồi đánh dấu failed.
// Chạy định kỳ (mặc định 5 phút).
type ChargeReconcileWorker struct {
	charges     reconcileChargeStore
	orders      ordersvc.OrderRecorder
	gateway     payment.Gateway
	interval    time.Duration // Khoảng thời gian giữa các lần chạy
	maxAttempts int           // Số lần thử ghi đơn hàng trước khi hoàn tiền
}

// NewChargeReconcileWorker tạo mới ChargeReconcileWorker với các service thật.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 5 phút)
//   - maxAttempts: Số lần thử tối đa trước khi hoàn tiền (mặc định: 5)
func NewChargeReconcileWorker(interval time.Duration, maxAttempts int) (*ChargeReconcileWorker, error) {
	chargeService, err := ordersvc.NewPendingChargeService()
	if err != nil {
		return nil, err
	}
	orderService, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, err
	}
	return NewChargeReconcileWorkerWith(chargeService, orderService, global.PaymentGateway, interval, maxAttempts), nil
}

// NewChargeReconcileWorkerWith tạo worker với dependencies được inject (dùng cho test)
func NewChargeReconcileWorkerWith(charges reconcileChargeStore, orders ordersvc.OrderRecorder, gateway payment.Gateway, interval time.Duration, maxAttempts int) *ChargeReconcileWorker {
	if interval < time.Minute {
		interval = 5 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &ChargeReconcileWorker{
		charges:     charges,
		orders:      orders,
		gateway:     gateway,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Start chạy worker trong vòng lặp cho đến khi ctx bị hủy
func (w *ChargeReconcileWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":    w.interval.String(),
		"maxAttempts": w.maxAttempts,
	}).Info("🔄 [RECONCILE] Starting Charge Reconcile Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🔄 [RECONCILE] Charge Reconcile Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [RECONCILE] Panic khi đối soát, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				w.ReconcileOnce(ctx)
			}()
		}
	}
}

// ReconcileOnce xử lý một lượt đối soát: duyệt các charge kẹt ở trạng thái charged
func (w *ChargeReconcileWorker) ReconcileOnce(ctx context.Context) {
	log := logger.GetAppLogger()

	cutoff := utility.CurrentTimeInMilli() - reconcileGracePeriod.Milliseconds()
	stuck, err := w.charges.FindStuckCharges(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("🔄 [RECONCILE] Lỗi lấy danh sách charge kẹt")
		return
	}
	if len(stuck) == 0 {
		return
	}

	recovered := 0
	refunded := 0
	for _, charge := range stuck {
		if charge.Attempts >= w.maxAttempts {
			// Hết số lần thử: trả tiền lại cho người mua
			if err := w.gateway.Refund(ctx, charge.TxnID, charge.Amount); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"ref_key": charge.RefKey,
					"txn_id":  charge.TxnID,
				}).Error("🔄 [RECONCILE] Hoàn tiền thất bại, sẽ thử lại lần sau")
				continue
			}
			if _, err := w.charges.MarkFailed(ctx, charge.ID, "refunded after max attempts"); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"ref_key": charge.RefKey,
				}).Error("🔄 [RECONCILE] Đã hoàn tiền nhưng không đánh dấu được failed")
				continue
			}
			log.WithFields(map[string]interface{}{
				"ref_key": charge.RefKey,
				"txn_id":  charge.TxnID,
				"amount":  charge.Amount,
			}).Warn("🔄 [RECONCILE] Đã hoàn tiền cho charge không ghi được đơn hàng")
			refunded++
			continue
		}

		// Thử ghi lại đơn hàng từ bản ghi charge (blob thanh toán tối thiểu,
		// blob gốc của cổng thanh toán chỉ có ở request checkout ban đầu)
		paymentBlob := map[string]interface{}{
			"success": true,
			"transaction": map[string]interface{}{
				"id": charge.TxnID,
			},
			"reconciled": true,
		}
		order, err := w.orders.CreateFromCharge(ctx, charge, paymentBlob)
		if err != nil {
			if _, recErr := w.charges.RecordAttempt(ctx, charge.ID, charge.Attempts+1, err.Error()); recErr != nil {
				log.WithError(recErr).WithFields(map[string]interface{}{
					"ref_key": charge.RefKey,
				}).Warn("🔄 [RECONCILE] Không ghi nhận được lần thử")
			}
			log.WithError(err).WithFields(map[string]interface{}{
				"ref_key":  charge.RefKey,
				"attempts": charge.Attempts + 1,
			}).Warn("🔄 [RECONCILE] Ghi lại đơn hàng thất bại, sẽ thử lại lần sau")
			continue
		}

		if _, err := w.charges.MarkRecorded(ctx, charge.ID, order.ID); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"ref_key":  charge.RefKey,
				"order_id": order.ID.Hex(),
			}).Warn("🔄 [RECONCILE] Không đánh dấu được recorded")
			continue
		}
		recovered++
	}

	if recovered > 0 || refunded > 0 {
		log.WithFields(map[string]interface{}{
			"recovered": recovered,
			"refunded":  refunded,
			"total":     len(stuck),
		}).Info("🔄 [RECONCILE] Đã đối soát các charge kẹt")
	}
}
