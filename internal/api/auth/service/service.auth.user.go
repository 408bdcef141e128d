// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "shop_commerce/internal/api/auth/models"
	basesvc "shop_commerce/internal/api/base/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/utility"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// FindByEmail tìm người dùng theo email
func (s *UserService) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": email}, nil)
}

// FindByToken tìm người dùng đang giữ token này
// Token mới nhất luôn được ghi vào field "token" mỗi lần phát hành
func (s *UserService) FindByToken(ctx context.Context, token string) (models.User, error) {
	return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"token": token}, nil)
}

// IssueToken phát hành JWT mới cho người dùng và lưu vào field "token"
// Dùng khi seed admin ở init mode và trong test helper
func (s *UserService) IssueToken(ctx context.Context, userID primitive.ObjectID) (string, error) {
	token, err := utility.CreateToken(global.MongoDB_ServerConfig.JwtSecret, userID.Hex())
	if err != nil {
		return "", err
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token": token,
		},
	}
	if _, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData); err != nil {
		return "", err
	}
	return token, nil
}
