package database

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop_commerce/internal/global"
	"shop_commerce/internal/logger"
)

// EnsureDatabaseAndCollections tạo sẵn mọi collection khai báo trong
// global.MongoDB_ColNames. MongoDB tự tạo database khi collection đầu tiên
// được tạo, không cần bước riêng.
func EnsureDatabaseAndCollections(client *mongo.Client) error {
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName

	// Một context tổng 30 giây cho cả vòng duyệt collections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbList, err := client.ListDatabaseNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}
	if !slices.Contains(dbList, dbName) {
		logger.GetAppLogger().Infof("Database %s does not exist, will create automatically by creating collections", dbName)
	}

	db := client.Database(dbName)
	collList, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	// Danh sách collection lấy từ các field của struct MongoDB_ColNames
	v := reflect.ValueOf(global.MongoDB_ColNames)
	for i := 0; i < v.NumField(); i++ {
		collectionName := v.Field(i).String()
		if slices.Contains(collList, collectionName) {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", collectionName)
		if err := db.CreateCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
		}
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", dbName)
	return nil
}

// parseOrder đọc thứ tự sắp xếp từ tag, mặc định tăng dần
func parseOrder(tag string) int {
	if strings.Contains(tag, "order:-1") {
		return -1
	}
	return 1
}

// parseIndexTag tách tag index thành danh sách cấu hình.
// Các cấu hình ngăn bằng ';', trong mỗi cấu hình các thuộc tính ngăn bằng ','
// và thuộc tính có giá trị viết dạng key:value.
func parseIndexTag(tag string) []map[string]string {
	var result []map[string]string
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, attr := range strings.Split(part, ",") {
			key, value, _ := strings.Cut(attr, ":")
			entry[key] = value
		}
		result = append(result, entry)
	}
	return result
}

// asInt chuẩn hóa giá trị key index từ driver (int32/int64/float64) về int
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// compareIndex kiểm tra index hiện có trên server đã khớp cấu hình mong muốn chưa
func compareIndex(existingIndex bson.M, keys bson.D, opts *options.IndexOptions) bool {
	existingKeys, ok := existingIndex["key"].(bson.M)
	if !ok {
		return false
	}

	for _, key := range keys {
		existingValue, exists := existingKeys[key.Key]
		if !exists {
			return false
		}
		if wanted, isInt := key.Value.(int); isInt {
			got, ok := asInt(existingValue)
			if !ok || got != wanted {
				return false
			}
		} else if existingValue != key.Value {
			// So sánh trực tiếp cho các kiểu khác (ví dụ "text")
			return false
		}
	}

	if unique, ok := existingIndex["unique"].(bool); ok && opts.Unique != nil {
		if unique != *opts.Unique {
			return false
		}
	} else if opts.Unique != nil && *opts.Unique {
		// Index cũ không unique nhưng cấu hình mới yêu cầu unique
		return false
	}

	if ttl, ok := existingIndex["expireAfterSeconds"].(int32); ok && opts.ExpireAfterSeconds != nil {
		if ttl != *opts.ExpireAfterSeconds {
			return false
		}
	}

	return true
}

// ensureIndex tạo index nếu chưa có, drop và tạo lại nếu cấu hình đã đổi
func ensureIndex(
	ctx context.Context,
	collection *mongo.Collection,
	existingIndexes map[string]bson.M,
	indexName string,
	keys bson.D,
	opts *options.IndexOptions,
) error {
	if existingIndex, exists := existingIndexes[indexName]; exists {
		if compareIndex(existingIndex, keys, opts) {
			return nil
		}
		if _, err := collection.Indexes().DropOne(ctx, indexName); err != nil {
			return fmt.Errorf("không thể xóa index %s: %w", indexName, err)
		}
		logger.GetAppLogger().Infof("Đã xóa index cũ: %s", indexName)
	}

	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: opts,
	}); err != nil {
		return fmt.Errorf("không thể tạo index %s: %w", indexName, err)
	}
	logger.GetAppLogger().Infof("Đã tạo index: %s", indexName)
	return nil
}

// CreateIndexes đọc tag `index` trên model struct và tạo các index tương ứng cho collection.
// Hỗ trợ: single, text, unique (kèm sparse), ttl và compound (gom theo tên group).
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existingIndexes := map[string]bson.M{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existingIndexes[name] = indexInfo
		}
	}

	compoundGroups := map[string]bson.D{}
	compoundUnique := map[string]bool{}
	compoundSparse := map[string]bool{}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}

		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, config := range parseIndexTag(tag) {
			if _, ok := config["text"]; ok {
				indexName := bsonField + "_text"
				keys := bson.D{{Key: bsonField, Value: "text"}}
				if err := ensureIndex(ctx, collection, existingIndexes, indexName, keys, options.Index().SetName(indexName)); err != nil {
					return err
				}
			}

			if _, ok := config["single"]; ok {
				indexName := bsonField + "_single"
				keys := bson.D{{Key: bsonField, Value: parseOrder(tag)}}
				if err := ensureIndex(ctx, collection, existingIndexes, indexName, keys, options.Index().SetName(indexName)); err != nil {
					return err
				}
			}

			if _, ok := config["unique"]; ok {
				indexName := bsonField + "_unique"
				keys := bson.D{{Key: bsonField, Value: 1}}
				opts := options.Index().SetName(indexName).SetUnique(true)

				// Sparse để các document không mang field này không đụng unique.
				// Cần cho field optional như email, hay nonceHash chỉ có trên
				// record pending và bị unset sau khi đối soát xong.
				if _, hasSparse := config["sparse"]; hasSparse {
					opts = opts.SetSparse(true)
				}
				if err := ensureIndex(ctx, collection, existingIndexes, indexName, keys, opts); err != nil {
					return err
				}
			}

			if ttlValue, ok := config["ttl"]; ok {
				ttl, err := strconv.Atoi(ttlValue)
				if err != nil {
					return fmt.Errorf("TTL không hợp lệ: %w", err)
				}
				indexName := bsonField + "_ttl"
				keys := bson.D{{Key: bsonField, Value: 1}}
				opts := options.Index().SetName(indexName).SetExpireAfterSeconds(int32(ttl))
				if err := ensureIndex(ctx, collection, existingIndexes, indexName, keys, opts); err != nil {
					return err
				}
			}

			if groupName, ok := config["compound"]; ok {
				compoundGroups[groupName] = append(compoundGroups[groupName], bson.E{Key: bsonField, Value: parseOrder(tag)})
				// Group có hậu tố _unique thì cả compound index là unique
				if strings.Contains(groupName, "_unique") {
					compoundUnique[groupName] = true
				}
				if _, hasSparse := config["sparse"]; hasSparse {
					compoundSparse[groupName] = true
				}
			}
		}
	}

	for groupName, fields := range compoundGroups {
		opts := options.Index().SetName(groupName)
		if compoundUnique[groupName] {
			opts = opts.SetUnique(true)
		}
		if compoundSparse[groupName] {
			opts = opts.SetSparse(true)
		}
		if err := ensureIndex(ctx, collection, existingIndexes, groupName, fields, opts); err != nil {
			return err
		}
	}

	return nil
}
