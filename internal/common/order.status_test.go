package common

import "testing"

func TestIsValidOrderStatus_AcceptsLegacyValues(t *testing.T) {
	// Danh sách giữ nguyên từ hệ thống cũ, kể cả "deliverd" và "cancel"
	valid := []string{"Not Process", "Processing", "Shipped", "deliverd", "cancel"}
	for _, status := range valid {
		if !IsValidOrderStatus(status) {
			t.Errorf("Trạng thái %q phải hợp lệ", status)
		}
	}
}

func TestIsValidOrderStatus_RejectsUnknownAndWrongCase(t *testing.T) {
	invalid := []string{
		"",
		"shipped",   // sai hoa thường
		"Delivered", // chính tả đã sửa - không khớp dữ liệu cũ
		"Cancel",
		"done",
	}
	for _, status := range invalid {
		if IsValidOrderStatus(status) {
			t.Errorf("Trạng thái %q không được hợp lệ", status)
		}
	}
}
