package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"shop_commerce/config"
	"shop_commerce/internal/logger"
)

// Tham số kết nối MongoDB
const (
	maxPoolSize    = 50
	minPoolSize    = 10
	connectTimeout = 5 * time.Second
	socketTimeout  = 10 * time.Second
	pingTimeout    = 2 * time.Second
)

// GetInstance kết nối đến MongoDB theo cấu hình và trả về client đã ping thành công.
// Client được dùng chung cho toàn bộ ứng dụng (connection pool do driver quản lý).
func GetInstance(c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_ConnectionURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	clientOptions := options.Client().
		ApplyURI(c.MongoDB_ConnectionURI).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(socketTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout*2)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping primary để chắc chắn kết nối thật sự hoạt động trước khi dùng
	ctxPing, cancelPing := context.WithTimeout(context.Background(), pingTimeout)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to MongoDB")
	return client, nil
}

// CloseInstance ngắt kết nối MongoDB client, gọi khi shutdown
func CloseInstance(client *mongo.Client) error {
	if err := client.Disconnect(context.TODO()); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from MongoDB")
	return nil
}
