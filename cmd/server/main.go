package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo"

	"shop_commerce/internal/database"
	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
	"shop_commerce/internal/worker"
)

// initLogger khởi tạo hệ thống logging trước mọi thứ khác
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// resolvePath resolve đường dẫn tương đối từ thư mục gốc dự án (nơi có config/env)
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

// serve chạy Fiber server, block cho đến khi server dừng
func serve(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	address := ":" + cfg.Address
	log := logger.GetAppLogger()

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}
		tlsListener := tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
		return
	}

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")

	if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// startReconcileWorker chạy worker đối soát charge trên goroutine nền
func startReconcileWorker(ctx context.Context) {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	reconcileWorker, err := worker.NewChargeReconcileWorker(
		time.Duration(cfg.ReconcileIntervalMin)*time.Minute,
		cfg.ReconcileMaxAttempts,
	)
	if err != nil {
		log.WithError(err).Error("Failed to create charge reconcile worker, continuing without reconciliation")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🔄 [RECONCILE] Worker goroutine panic")
			}
		}()
		reconcileWorker.Start(ctx)
		log.Warn("🔄 [RECONCILE] Worker đã dừng (có thể do context cancelled)")
	}()

	log.Info("🔄 [RECONCILE] Charge Reconcile Worker started successfully")
}

// shutdown dọn dẹp tài nguyên theo thứ tự: HTTP server, registry, MongoDB, logger
func shutdown(app *fiber.App) {
	log := logger.GetAppLogger()
	log.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Warn("Fiber shutdown returned error")
	}

	if count, err := global.RegistryCollections.ClearAll(nil); err != nil {
		log.WithError(err).Warn("Failed to clear collection registry")
	} else {
		log.Infof("Cleared %d registered collections", count)
	}
	_, _ = global.RegistryDatabase.ClearAll(func(db *mongo.Database) error { return nil })

	if global.MongoDB_Session != nil {
		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Warn("Failed to close MongoDB connection")
		}
	}

	log.Info("Shutdown complete")
	logger.Close()
}

func main() {
	initLogger()
	InitGlobal()
	InitRegistry()
	InitDefaultData()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	startReconcileWorker(workerCtx)

	app := InitFiberApp()

	// Chạy server trên goroutine để main còn đợi signal shutdown
	go serve(app)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.GetAppLogger().Infof("Received signal %s", sig)

	cancelWorker()
	shutdown(app)
}
