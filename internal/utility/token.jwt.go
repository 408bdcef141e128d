package utility

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shop_commerce/internal/common"
)

// TokenClaims là claims chuẩn của JWT phát hành bởi hệ thống
// UserID là hex string của ObjectID người dùng
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Thời gian sống mặc định của token (7 ngày, giống behavior cũ của hệ thống)
const tokenTTL = 7 * 24 * time.Hour

// CreateToken tạo JWT token HS256 cho người dùng
func CreateToken(secret string, userID string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", common.NewError(common.ErrCodeAuthToken, "Không thể tạo token", common.StatusInternalServerError, err)
	}
	return signed, nil
}

// ParseToken xác thực chữ ký và thời hạn của token, trả về userId trong claims
// Trả về common.ErrTokenExpired nếu token hết hạn, common.ErrTokenInvalid cho mọi lỗi khác
func ParseToken(secret string, tokenString string) (string, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Chỉ chấp nhận HMAC, chặn tấn công đổi thuật toán ký
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" {
		return "", common.ErrTokenInvalid
	}
	return claims.UserID, nil
}
