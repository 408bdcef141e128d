package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Gateway không hợp lệ
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Gateway timeout
)

// Response Messages
const (
	// Success Messages
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	// Error Messages
	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgUnauthorized    = "Vui lòng đăng nhập"
	MsgForbidden       = "Không có quyền truy cập"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"

	// Token Messages
	MsgTokenMissing = "Thiếu token xác thực"
	MsgTokenInvalid = "Token không hợp lệ"
	MsgTokenExpired = "Token đã hết hạn"

	// Legacy Messages (giữ nguyên format cũ cho client hiện tại)
	MsgUnAuthorizedAccess = "UnAuthorized Access"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Token)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuth = ErrorCode{
		Code:        "AUTH",
		Category:    "Authentication",
		SubCategory: "General",
		Description: "Lỗi xác thực chung",
	}

	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "Lỗi liên quan đến token",
	}

	ErrCodeAuthCredentials = ErrorCode{
		Code:        "AUTH_002",
		Category:    "Authentication",
		SubCategory: "Credentials",
		Description: "Lỗi thông tin đăng nhập",
	}

	ErrCodeAuthRole = ErrorCode{
		Code:        "AUTH_003",
		Category:    "Authentication",
		SubCategory: "Role",
		Description: "Lỗi liên quan đến vai trò người dùng",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Payment Errors (PAY_xxx)
	ErrCodePayment = ErrorCode{
		Code:        "PAY",
		Category:    "Payment",
		SubCategory: "General",
		Description: "Lỗi thanh toán chung",
	}

	ErrCodePaymentGateway = ErrorCode{
		Code:        "PAY_001",
		Category:    "Payment",
		SubCategory: "Gateway",
		Description: "Lỗi giao tiếp với cổng thanh toán",
	}

	ErrCodePaymentDeclined = ErrorCode{
		Code:        "PAY_002",
		Category:    "Payment",
		SubCategory: "Transaction",
		Description: "Giao dịch bị cổng thanh toán từ chối",
	}

	ErrCodePaymentDuplicate = ErrorCode{
		Code:        "PAY_003",
		Category:    "Payment",
		SubCategory: "Idempotency",
		Description: "Nonce thanh toán đã được sử dụng",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusiness = ErrorCode{
		Code:        "BIZ",
		Category:    "Business",
		SubCategory: "General",
		Description: "Lỗi logic nghiệp vụ chung",
	}

	ErrCodeBusinessState = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "State",
		Description: "Lỗi trạng thái nghiệp vụ",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Authentication Errors
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Thông tin đăng nhập không chính xác", StatusUnauthorized, nil)
	ErrTokenExpired       = NewError(ErrCodeAuthToken, "Phiên đăng nhập đã hết hạn", StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthToken, "Token không hợp lệ", StatusUnauthorized, nil)
	ErrTokenMissing       = NewError(ErrCodeAuthToken, "Thiếu token xác thực", StatusUnauthorized, nil)
	ErrUserNotFound       = NewError(ErrCodeAuthCredentials, "Không tìm thấy thông tin người dùng", StatusNotFound, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound  = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)

	// Payment Errors
	ErrNonceAlreadyUsed = NewError(ErrCodePaymentDuplicate, "Nonce thanh toán đã được xử lý trước đó", StatusConflict, nil)

	// Business Logic Errors
	ErrInvalidState = NewError(ErrCodeBusinessState, "Trạng thái không hợp lệ", StatusBadRequest, nil)
)

// MongoDB Specific Errors
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối MongoDB", StatusServiceUnavailable, nil)
	ErrMongoNetwork    = NewError(ErrCodeDatabaseConnection, "Lỗi mạng khi kết nối MongoDB", StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable, nil)
	ErrMongoAuth       = NewError(ErrCodeAuth, "Lỗi xác thực MongoDB", StatusUnauthorized, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseQuery, "Lỗi ghi dữ liệu MongoDB", StatusInternalServerError, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu trùng lặp trong MongoDB", StatusConflict, nil)
	ErrMongoSystem     = NewError(ErrCodeDatabase, "Lỗi hệ thống MongoDB", StatusInternalServerError, nil)
)

// NewGatewayError bọc lỗi gốc từ cổng thanh toán thành Error 500.
// Lỗi gốc được giữ trong Details để handler log lại đầy đủ.
func NewGatewayError(err error) error {
	msg := "Lỗi giao tiếp với cổng thanh toán"
	if err != nil {
		msg = err.Error()
	}
	return NewError(ErrCodePaymentGateway, msg, StatusInternalServerError, err)
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert ErrNotFound - giữ nguyên để caller phân biệt 404
	if errors.Is(err, ErrNotFound) {
		return err
	}

	// Kiểm tra các loại lỗi MongoDB cụ thể
	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return ErrMongoConnection
		case mongoErr.Code >= 200 && mongoErr.Code < 300:
			return ErrMongoAuth
		case mongoErr.Code >= 300 && mongoErr.Code < 400:
			return ErrMongoQuery
		case mongoErr.Code >= 400 && mongoErr.Code < 500:
			return ErrMongoWrite
		case mongoErr.Code >= 500:
			return ErrMongoSystem
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrMongoDuplicate
	}
	if mongo.IsNetworkError(err) {
		return ErrMongoNetwork
	}
	if mongo.IsTimeout(err) {
		return ErrMongoTimeout
	}

	// Nếu không tìm thấy lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}
