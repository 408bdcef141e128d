package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển struct thành map qua bson marshal/unmarshal.
// Key trong map lấy theo bson tag của struct, dùng khi cần
// thêm bớt field động (timestamps) trước khi ghi xuống MongoDB.
func ToMap(s interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}

	var result map[string]interface{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return result, nil
}
