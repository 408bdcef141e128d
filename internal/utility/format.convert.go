package utility

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// String2ObjectID chuyển chuỗi hex thành ObjectID.
// Trả về NilObjectID nếu chuỗi không hợp lệ - caller cần validate trước bằng primitive.IsValidObjectID.
func String2ObjectID(id string) primitive.ObjectID {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objID
}
