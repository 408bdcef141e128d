// Package ordersvc - service cho domain order.
package ordersvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "shop_commerce/internal/api/base/service"
	models "shop_commerce/internal/api/order/models"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
)

// PendingChargeService quản lý các bản ghi write-ahead của giao dịch thanh toán
type PendingChargeService struct {
	*basesvc.BaseServiceMongoImpl[models.PendingCharge]
}

// NewPendingChargeService tạo mới PendingChargeService
func NewPendingChargeService() (*PendingChargeService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ShopPendingCharges)
	if !exist {
		return nil, fmt.Errorf("failed to get shop_pending_charges collection: %v", common.ErrNotFound)
	}

	return &PendingChargeService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.PendingCharge](collection),
	}, nil
}

// HashNonce băm nonce thanh toán để lưu vào nonceHash
// Không bao giờ lưu nonce gốc, chỉ lưu hash để so trùng
func HashNonce(nonce string) string {
	sum := sha256.Sum256([]byte(nonce))
	return hex.EncodeToString(sum[:])
}

// CreatePending ghi nhận ý định thanh toán TRƯỚC khi gọi cổng thanh toán
// Unique index trên nonceHash đảm bảo cùng một nonce chỉ tạo được một charge:
// nếu nonce đã được dùng, trả về common.ErrNonceAlreadyUsed
func (s *PendingChargeService) CreatePending(ctx context.Context, buyer primitive.ObjectID, products []primitive.ObjectID, amount string, nonce string) (models.PendingCharge, error) {
	charge := models.PendingCharge{
		RefKey:    uuid.NewString(),
		Buyer:     buyer,
		Products:  products,
		Amount:    amount,
		NonceHash: HashNonce(nonce),
		State:     models.PendingChargeStatePending,
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, charge)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) || errors.Is(err, common.ErrDuplicate) {
			return charge, common.ErrNonceAlreadyUsed
		}
		return charge, err
	}
	return created, nil
}

// MarkCharged chuyển trạng thái pending -> charged sau khi cổng thanh toán trừ tiền thành công
// Filter theo state cũ để tránh race, trả về common.ErrInvalidState nếu trạng thái không còn là pending
func (s *PendingChargeService) MarkCharged(ctx context.Context, id primitive.ObjectID, txnID string) (models.PendingCharge, error) {
	filter := bson.M{"_id": id, "state": models.PendingChargeStatePending}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"state": models.PendingChargeStateCharged,
			"txnId": txnID,
		},
	}

	charge, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return charge, common.ErrInvalidState
		}
		return charge, err
	}
	return charge, nil
}

// MarkRecorded chuyển trạng thái charged -> recorded sau khi đơn hàng được ghi thành công
func (s *PendingChargeService) MarkRecorded(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID) (models.PendingCharge, error) {
	filter := bson.M{"_id": id, "state": models.PendingChargeStateCharged}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"state":   models.PendingChargeStateRecorded,
			"orderId": orderID,
		},
	}

	charge, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return charge, common.ErrInvalidState
		}
		return charge, err
	}
	return charge, nil
}

// MarkFailed đánh dấu charge thất bại (sale bị từ chối hoặc đã hoàn tiền)
func (s *PendingChargeService) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) (models.PendingCharge, error) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"state":     models.PendingChargeStateFailed,
			"lastError": reason,
		},
	}
	return s.BaseServiceMongoImpl.UpdateById(ctx, id, update)
}

// RecordAttempt ghi nhận một lần thử ghi lại đơn hàng của worker đối soát
func (s *PendingChargeService) RecordAttempt(ctx context.Context, id primitive.ObjectID, attempts int, lastError string) (models.PendingCharge, error) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"attempts":  attempts,
			"lastError": lastError,
		},
	}
	return s.BaseServiceMongoImpl.UpdateById(ctx, id, update)
}

// FindStuckCharges trả về các charge đã trừ tiền nhưng chưa ghi được đơn hàng
// (state == charged và không được cập nhật trong khoảng graceMs gần nhất)
func (s *PendingChargeService) FindStuckCharges(ctx context.Context, olderThanMs int64) ([]models.PendingCharge, error) {
	filter := bson.M{
		"state":     models.PendingChargeStateCharged,
		"updatedAt": bson.M{"$lt": olderThanMs},
	}
	return s.BaseServiceMongoImpl.Find(ctx, filter, nil)
}
