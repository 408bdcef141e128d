package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Bao gồm thông tin cơ sở dữ liệu, server và cổng thanh toán
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo dữ liệu mặc định
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Payment Gateway Configuration
	Gateway_BaseURL    string `env:"GATEWAY_BASE_URL,required"`               // URL gốc API của cổng thanh toán
	Gateway_MerchantID string `env:"GATEWAY_MERCHANT_ID,required"`            // Merchant ID trên cổng thanh toán
	Gateway_PublicKey  string `env:"GATEWAY_PUBLIC_KEY,required"`             // Public key của merchant
	Gateway_PrivateKey string `env:"GATEWAY_PRIVATE_KEY,required"`            // Private key của merchant
	Gateway_TimeoutSec int    `env:"GATEWAY_TIMEOUT_SECONDS" envDefault:"30"` // Timeout cho mỗi lần gọi cổng thanh toán (giây)

	// Charge Reconcile Worker Configuration
	ReconcileIntervalMin int `env:"RECONCILE_INTERVAL_MINUTES" envDefault:"5"` // Khoảng thời gian giữa các lần chạy worker đối soát (phút)
	ReconcileMaxAttempts int `env:"RECONCILE_MAX_ATTEMPTS" envDefault:"5"`     // Số lần thử tạo lại đơn hàng trước khi hoàn tiền

	// Seed admin (chỉ dùng khi INITMODE=true)
	AdminEmail string `env:"ADMIN_EMAIL"` // Email của user admin được seed khi init

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env theo môi trường hiện tại
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
