package catalogdto

// CategoryCreateInput dữ liệu đầu vào khi tạo danh mục
type CategoryCreateInput struct {
	Name string `json:"name" validate:"required,no_xss"`
	Slug string `json:"slug,omitempty"`
}

// CategoryUpdateInput dữ liệu đầu vào khi cập nhật danh mục
type CategoryUpdateInput struct {
	Name string `json:"name,omitempty" validate:"omitempty,no_xss"`
	Slug string `json:"slug,omitempty"`
}
