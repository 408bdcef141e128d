package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	models "shop_commerce/internal/api/auth/models"
	authsvc "shop_commerce/internal/api/auth/service"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/utility"
)

// AuthManager quản lý xác thực và phân quyền người dùng
type AuthManager struct {
	UserCRUD *authsvc.UserService
	Cache    *utility.Cache
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về instance duy nhất của AuthManager (singleton pattern)
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

// newAuthManager khởi tạo một instance mới của AuthManager (private constructor)
func newAuthManager() (*AuthManager, error) {
	newManager := new(AuthManager)

	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	newManager.UserCRUD = userService

	// Khởi tạo cache với thời gian sống 5 phút và thời gian dọn dẹp 10 phút
	newManager.Cache = utility.NewCache(5*time.Minute, 10*time.Minute)

	return newManager, nil
}

// resolveUser xác thực token và trả về người dùng tương ứng
// Token phải có chữ ký hợp lệ, còn hạn, và vẫn là token mới nhất của user (field "token")
func (am *AuthManager) resolveUser(ctx context.Context, token string) (models.User, error) {
	cacheKey := "auth_token:" + token
	if cached, found := am.Cache.Get(cacheKey); found {
		return cached.(models.User), nil
	}

	// Xác thực chữ ký và thời hạn trước khi chạm database
	userID, err := utility.ParseToken(global.MongoDB_ServerConfig.JwtSecret, token)
	if err != nil {
		return models.User{}, err
	}

	user, err := am.UserCRUD.FindOneById(ctx, utility.String2ObjectID(userID))
	if err != nil {
		return models.User{}, common.ErrTokenInvalid
	}

	// Token cũ (đã bị thay bởi lần login sau) không còn giá trị
	if user.Token != token {
		return models.User{}, common.ErrTokenInvalid
	}

	am.Cache.Set(cacheKey, user)
	return user, nil
}

// AuthMiddleware middleware xác thực cho Fiber
// Xác thực Bearer token và lưu user vào context (user_id, user)
func AuthMiddleware() fiber.Handler {
	// Sử dụng singleton instance của AuthManager
	authManager := GetAuthManager()

	return func(c fiber.Ctx) error {
		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// Chỉ log khi thiếu token (lỗi quan trọng)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		token := parts[1]

		user, err := authManager.resolveUser(c.Context(), token)
		if err != nil {
			// Chỉ log khi token không hợp lệ (lỗi quan trọng)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Token rejected")
			HandleErrorResponse(c, err)
			return nil
		}

		// Kiểm tra user có bị block không
		if user.IsBlock {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản đã bị khóa: "+user.BlockNote,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)

		return c.Next()
	}
}

// RequireAdmin middleware chặn người dùng không phải admin
// Body 401 giữ nguyên format cũ của hệ thống, các client hiện có đang parse đúng chuỗi này
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok || !user.IsAdmin() {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":    c.Path(),
				"user_id": c.Locals("user_id"),
			}).Warn("❌ [AUTH] Admin access denied")
			return JSONResponse(c, common.StatusUnauthorized, fiber.Map{
				"success": false,
				"message": common.MsgUnAuthorizedAccess,
			})
		}
		return c.Next()
	}
}
