// Package ordersvc - Test cấu trúc pipeline truy vấn đơn hàng (không cần MongoDB)
package ordersvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop_commerce/internal/global"
)

func setColNamesForTest() {
	global.MongoDB_ColNames.Users = "users"
	global.MongoDB_ColNames.CatalogProducts = "catalog_products"
	global.MongoDB_ColNames.ShopOrders = "shop_orders"
	global.MongoDB_ColNames.ShopPendingCharges = "shop_pending_charges"
}

// stageValue trả về giá trị của stage nếu stage có đúng operator cần tìm
func stageValue(stage bson.D, op string) (interface{}, bool) {
	for _, elem := range stage {
		if elem.Key == op {
			return elem.Value, true
		}
	}
	return nil, false
}

func TestBuyerOrdersPipeline_ScopesToBuyer(t *testing.T) {
	setColNamesForTest()
	buyerID := primitive.NewObjectID()

	pipeStages := buyerOrdersPipeline(buyerID)
	if len(pipeStages) == 0 {
		t.Fatal("Pipeline không được rỗng")
	}

	match, ok := stageValue(pipeStages[0], "$match")
	if !ok {
		t.Fatalf("Stage đầu tiên phải là $match theo người mua, nhận %v", pipeStages[0])
	}
	filter, ok := match.(bson.M)
	if !ok {
		t.Fatalf("$match phải là bson.M, nhận %T", match)
	}
	if got, ok := filter["buyer"].(primitive.ObjectID); !ok || got != buyerID {
		t.Errorf("$match phải lọc đúng buyer %s, nhận %v", buyerID.Hex(), filter["buyer"])
	}

	// Các stage join phía sau không được nới rộng phạm vi sang người mua khác
	for _, stage := range pipeStages[1:] {
		if _, ok := stageValue(stage, "$match"); ok {
			t.Errorf("Không được có $match thứ hai ghi đè phạm vi buyer: %v", stage)
		}
	}
}

func TestBuyerOrdersPipeline_ExcludesSensitiveBuyerFields(t *testing.T) {
	setColNamesForTest()

	pipeStages := buyerOrdersPipeline(primitive.NewObjectID())

	var buyerLookup bson.M
	for _, stage := range pipeStages {
		value, ok := stageValue(stage, "$lookup")
		if !ok {
			continue
		}
		lookup, ok := value.(bson.M)
		if !ok {
			t.Fatalf("$lookup phải là bson.M, nhận %T", value)
		}
		if lookup["from"] == global.MongoDB_ColNames.Users {
			buyerLookup = lookup
		}
	}
	if buyerLookup == nil {
		t.Fatal("Pipeline phải có $lookup sang collection người dùng")
	}

	inner, ok := buyerLookup["pipeline"].([]bson.M)
	if !ok || len(inner) == 0 {
		t.Fatalf("$lookup buyer phải có pipeline con để loại trường nhạy cảm, nhận %v", buyerLookup["pipeline"])
	}
	project, ok := inner[0]["$project"].(bson.M)
	if !ok {
		t.Fatalf("Pipeline con phải bắt đầu bằng $project, nhận %v", inner[0])
	}
	for _, field := range []string{"password", "salt", "token"} {
		if excluded, ok := project[field].(int); !ok || excluded != 0 {
			t.Errorf("$project phải loại trường %q khỏi buyer, nhận %v", field, project[field])
		}
	}
}

func TestAllOrdersPipeline_NoMatchAndSortsNewestFirst(t *testing.T) {
	setColNamesForTest()

	pipeStages := allOrdersPipeline()
	if len(pipeStages) == 0 {
		t.Fatal("Pipeline không được rỗng")
	}

	for _, stage := range pipeStages {
		if _, ok := stageValue(stage, "$match"); ok {
			t.Errorf("Danh sách toàn hệ thống không được lọc theo buyer: %v", stage)
		}
	}

	sortValue, ok := stageValue(pipeStages[len(pipeStages)-1], "$sort")
	if !ok {
		t.Fatalf("Stage cuối phải là $sort, nhận %v", pipeStages[len(pipeStages)-1])
	}
	sort, ok := sortValue.(bson.M)
	if !ok {
		t.Fatalf("$sort phải là bson.M, nhận %T", sortValue)
	}
	if order, ok := sort["createdAt"].(int); !ok || order != -1 {
		t.Errorf("Phải sắp xếp createdAt giảm dần, nhận %v", sort["createdAt"])
	}
}
