package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	catalogrouter "shop_commerce/internal/api/catalog/router"
	orderrouter "shop_commerce/internal/api/order/router"
	apirouter "shop_commerce/internal/api/router"
	"shop_commerce/internal/common"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
)

// InitFiberApp dựng app Fiber: config server, middleware stack và routes
func InitFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Shop Commerce API",
		ServerHeader:  "Shop Commerce API",
		StrictRouting: false, // /foo và /foo/ là một
		CaseSensitive: true,  // /Foo và /foo là khác nhau
		UnescapePath:  true,
		Immutable:     false,

		BodyLimit:       10 * 1024 * 1024,
		Concurrency:     256 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: fiberErrorHandler,
	})

	registerMiddleware(app)

	// Health check đơn giản cho load balancer
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := apirouter.SetupRoutes(app, catalogrouter.Register, orderrouter.Register); err != nil {
		logger.GetAppLogger().Fatalf("Failed to setup routes: %v", err)
	}

	return app
}

// errorCodeForStatus map HTTP status sang mã lỗi hệ thống
func errorCodeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return common.ErrCodeValidationInput.Code
	case fiber.StatusUnauthorized:
		return common.ErrCodeAuthToken.Code
	case fiber.StatusForbidden:
		return common.ErrCodeAuthRole.Code
	case fiber.StatusNotFound, fiber.StatusConflict:
		return common.ErrCodeDatabaseQuery.Code
	}
	return common.ErrCodeInternalServer.Code
}

// isTLSHandshakeError nhận diện client gọi https:// vào server HTTP.
// fasthttp báo lỗi method lạ với payload bắt đầu bằng \x16\x03\x01.
func isTLSHandshakeError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unsupported http request method") &&
		(strings.Contains(msg, "\\x16\\x03\\x01") ||
			strings.Contains(msg, "\x16\x03\x01") ||
			strings.Contains(msg, "error when reading request headers"))
}

// fiberErrorHandler là error handler cuối cùng cho các lỗi lọt ra khỏi handler
func fiberErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	errorCode := errorCodeForStatus(code)

	// TLS handshake vào cổng HTTP là chuyện thường, không log để giảm nhiễu
	if isTLSHandshakeError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    common.ErrCodeValidationInput.Code,
			"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
			"status":  "error",
			"details": fiber.Map{
				"protocol":   "HTTP only",
				"suggestion": "Sử dụng URL: http://localhost:" + global.MongoDB_ServerConfig.Address,
			},
		})
	}

	logger.WithRequest(c).WithFields(map[string]interface{}{
		"code":      code,
		"errorCode": errorCode,
		"message":   message,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"code":    errorCode,
		"message": message,
		"status":  "error",
	})
}

// registerMiddleware gắn middleware stack theo thứ tự:
// request id -> CORS -> security headers -> rate limit -> recover.
// CORS phải đứng trước các middleware chặn request để preflight luôn đi qua.
func registerMiddleware(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: parseAllowOrigins(cfg.CORS_Origins),
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
		},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		MaxAge:           24 * 60 * 60, // cache preflight 24 giờ
	}))

	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    common.ErrCodeBusiness.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				// Health check và preflight không tính vào rate limit
				return c.Path() == "/health" || c.Method() == "OPTIONS"
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic":   e,
				"headers": c.GetReqHeaders(),
				"body":    string(c.Body()),
			}).Error("Panic recovered")

			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusInternalServerError,
				"message": "Internal Server Error",
				"error":   fmt.Sprintf("%v", e),
				"time":    time.Now().Format(time.RFC3339),
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
}

// parseAllowOrigins tách danh sách origin từ config, "*" cho development
func parseAllowOrigins(corsOrigins string) []string {
	if corsOrigins == "*" {
		return []string{"*"}
	}
	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}
