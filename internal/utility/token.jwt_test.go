package utility

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shop_commerce/internal/common"
)

const testSecret = "test-secret-key"

func TestCreateAndParseToken(t *testing.T) {
	userID := "507f1f77bcf86cd799439011"

	token, err := CreateToken(testSecret, userID)
	if err != nil {
		t.Fatalf("CreateToken lỗi: %v", err)
	}
	if token == "" {
		t.Fatal("Token không được rỗng")
	}

	parsed, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken lỗi: %v", err)
	}
	if parsed != userID {
		t.Errorf("UserID không khớp: muốn %q, nhận %q", userID, parsed)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := CreateToken(testSecret, "507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("CreateToken lỗi: %v", err)
	}

	_, err = ParseToken("other-secret", token)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("Sai secret phải trả về ErrTokenInvalid, nhận %v", err)
	}
}

func TestParseToken_Tampered(t *testing.T) {
	token, err := CreateToken(testSecret, "507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("CreateToken lỗi: %v", err)
	}

	// Đổi 1 ký tự trong phần payload
	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	tampered := strings.Join(parts, ".")

	_, err = ParseToken(testSecret, tampered)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("Token bị sửa phải trả về ErrTokenInvalid, nhận %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	// Tạo token đã hết hạn bằng tay
	now := time.Now().Add(-48 * time.Hour)
	claims := TokenClaims{
		UserID: "507f1f77bcf86cd799439011",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Không tạo được token hết hạn: %v", err)
	}

	_, err = ParseToken(testSecret, expired)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Errorf("Token hết hạn phải trả về ErrTokenExpired, nhận %v", err)
	}
}

func TestParseToken_MissingUserID(t *testing.T) {
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Không tạo được token: %v", err)
	}

	_, err = ParseToken(testSecret, token)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("Token thiếu userId phải trả về ErrTokenInvalid, nhận %v", err)
	}
}

func TestParseToken_WrongAlgorithm(t *testing.T) {
	// Token ký bằng "none" phải bị từ chối
	claims := TokenClaims{UserID: "507f1f77bcf86cd799439011"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Không tạo được token none: %v", err)
	}

	_, err = ParseToken(testSecret, token)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("Token thuật toán none phải trả về ErrTokenInvalid, nhận %v", err)
	}
}
