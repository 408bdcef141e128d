// Package catalogdto chứa DTO cho domain Catalog (product, category).
package catalogdto

// ProductCreateInput dữ liệu đầu vào khi tạo sản phẩm
type ProductCreateInput struct {
	Name        string  `json:"name" validate:"required,no_xss"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty" validate:"omitempty,no_xss"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category,omitempty" validate:"omitempty,exists=catalog_categories"`
	Quantity    int64   `json:"quantity" validate:"gte=0"`
	Shipping    bool    `json:"shipping,omitempty"`
}

// ProductUpdateInput dữ liệu đầu vào khi cập nhật sản phẩm
type ProductUpdateInput struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,no_xss"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty" validate:"omitempty,no_xss"`
	Price       float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Category    string  `json:"category,omitempty" validate:"omitempty,exists=catalog_categories"`
	Quantity    int64   `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Shipping    bool    `json:"shipping,omitempty"`
}
