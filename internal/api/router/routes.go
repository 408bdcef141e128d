package router

import (
	"github.com/gofiber/fiber/v3"
)

// ⚠️ LƯU Ý VỀ MIDDLEWARE TRONG FIBER V3:
// Đăng ký middleware trực tiếp trong route (router.Get(path, middleware, handler))
// KHÔNG hoạt động đúng trong Fiber v3 - middleware sẽ bị bỏ qua.
// PHẢI dùng RegisterRouteWithMiddleware (đăng ký qua group.Use()).

// CRUDHandler định nghĩa interface cho các handler CRUD
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateById(c fiber.Ctx) error

	// Delete
	DeleteById(c fiber.Ctx) error

	// Other
	CountDocuments(c fiber.Ctx) error
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// CRUDConfig cấu hình các operation được phép cho mỗi collection
type CRUDConfig struct {
	InsOne   bool // Insert One
	Find     bool // Find All
	FindOne  bool // Find One
	FindById bool // Find By Id
	Paginate bool // Find With Pagination
	UpdById  bool // Update By Id
	DelById  bool // Delete By Id
	Count    bool // Count Documents
}

// Config cho từng collection. Các domain dùng chung: ReadOnlyConfig, ReadWriteConfig.
var (
	// ReadOnlyConfig chỉ cho phép đọc (find, find-one, find-by-id, paginate, count).
	ReadOnlyConfig = CRUDConfig{
		InsOne: false,
		Find:   true, FindOne: true, FindById: true, Paginate: true,
		UpdById: false, DelById: false,
		Count: true,
	}

	// ReadWriteConfig cho phép đầy đủ CRUD.
	ReadWriteConfig = CRUDConfig{
		InsOne: true,
		Find:   true, FindOne: true, FindById: true, Paginate: true,
		UpdById: true, DelById: true,
		Count: true,
	}
)

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// RegisterRouteWithMiddleware đăng ký route với middleware sử dụng .Use() method (cách đúng theo Fiber v3)
//
// Ví dụ sử dụng:
//
//	authMiddleware := middleware.AuthMiddleware()
//	RegisterRouteWithMiddleware(router, "/auth", "GET", "/orders", []fiber.Handler{authMiddleware}, handler)
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	// Tạo group với prefix, middleware chỉ áp dụng cho routes trong group này
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	// Đăng ký route với path tương đối (không có prefix vì đã có trong group)
	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// RegisterCRUDRoutes đăng ký các route CRUD cho một collection.
// middlewares được áp dụng cho mọi route của collection (truyền nil cho route public).
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig, middlewares []fiber.Handler) {
	// Create operations
	if config.InsOne {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-one", middlewares, h.InsertOne)
	}

	// Read operations
	if config.Find {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find", middlewares, h.Find)
	}
	if config.FindOne {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-one", middlewares, h.FindOne)
	}
	if config.FindById {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-by-id/:id", middlewares, h.FindOneById)
	}
	if config.Paginate {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-with-pagination", middlewares, h.FindWithPagination)
	}

	// Update operations
	if config.UpdById {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-by-id/:id", middlewares, h.UpdateById)
	}

	// Delete operations
	if config.DelById {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-by-id/:id", middlewares, h.DeleteById)
	}

	// Other operations
	if config.Count {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/count", middlewares, h.CountDocuments)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả các route cho ứng dụng.
// Caller truyền lần lượt Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
