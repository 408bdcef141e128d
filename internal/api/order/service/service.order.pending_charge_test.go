package ordersvc

import "testing"

func TestHashNonce_Deterministic(t *testing.T) {
	a := HashNonce("fake-valid-nonce")
	b := HashNonce("fake-valid-nonce")
	if a != b {
		t.Errorf("Cùng nonce phải cho cùng hash: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Hash sha256 hex phải dài 64 ký tự, nhận %d", len(a))
	}
}

func TestHashNonce_DistinctNonces(t *testing.T) {
	if HashNonce("nonce-a") == HashNonce("nonce-b") {
		t.Error("Nonce khác nhau phải cho hash khác nhau")
	}
}
