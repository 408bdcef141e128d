package main

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"shop_commerce/config"
	"shop_commerce/internal/global"
)

func InitRegistry() {
	// Khởi tạo registry và đăng ký các collections
	err := InitCollections(global.MongoDB_Session, global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db, err := global.RegistryDatabase.GetOrCreate(cfg.MongoDB_DBName, func() (*mongo.Database, error) {
		return client.Database(cfg.MongoDB_DBName), nil
	})
	if err != nil {
		return err
	}
	colNames := []string{
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.CatalogProducts,
		global.MongoDB_ColNames.CatalogCategories,
		global.MongoDB_ColNames.ShopOrders,
		global.MongoDB_ColNames.ShopPendingCharges,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
