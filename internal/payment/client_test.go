// Package payment - Test RestClient với httptest server giả lập cổng thanh toán
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shop_commerce/internal/common"
)

func newTestClient(serverURL string) *RestClient {
	return NewRestClient(ClientConfig{
		BaseURL:    serverURL,
		MerchantID: "merchant-test",
		PublicKey:  "public-key",
		PrivateKey: "private-key",
		Timeout:    5 * time.Second,
	})
}

func TestGenerateToken_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchants/merchant-test/client_token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		// Basic auth phải mang public/private key của merchant
		username, password, ok := r.BasicAuth()
		assert.True(t, ok, "Request phải có basic auth")
		assert.Equal(t, "public-key", username)
		assert.Equal(t, "private-key", password)

		json.NewEncoder(w).Encode(map[string]interface{}{"clientToken": "token-abc"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GenerateToken(context.Background())
	if err != nil {
		t.Fatalf("GenerateToken lỗi: %v", err)
	}
	assert.Equal(t, "token-abc", result.ClientToken)
	assert.Equal(t, "token-abc", result.Raw["clientToken"])
}

func TestGenerateToken_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"other": "value"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateToken(context.Background())
	if err == nil {
		t.Fatal("Response thiếu clientToken phải trả về lỗi")
	}
}

func TestSale_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchants/merchant-test/transactions", r.URL.Path)

		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "19.99", req["amount"])
		assert.Equal(t, "fake-nonce", req["paymentMethodNonce"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"transaction": map[string]interface{}{"id": "txn-999"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Sale(context.Background(), &SaleRequest{
		Amount:             "19.99",
		PaymentMethodNonce: "fake-nonce",
		Options:            SaleOptions{SubmitForSettlement: true},
	})
	if err != nil {
		t.Fatalf("Sale lỗi: %v", err)
	}
	assert.True(t, result.Success)
	assert.Equal(t, "txn-999", result.TransactionID)
}

func TestSale_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Insufficient Funds",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Sale(context.Background(), &SaleRequest{Amount: "10.00", PaymentMethodNonce: "fake-nonce"})
	if err == nil {
		t.Fatal("Giao dịch bị từ chối phải trả về lỗi")
	}

	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("Lỗi phải là *common.Error, nhận %T", err)
	}
	assert.Equal(t, common.ErrCodePaymentDeclined.Code, customErr.Code.Code)
	assert.Equal(t, "Insufficient Funds", customErr.Message)
}

func TestSale_ImpliedSuccessWithoutFlag(t *testing.T) {
	// Một số cổng chỉ trả transaction mà không có flag success
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": map[string]interface{}{"id": "txn-implied"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Sale(context.Background(), &SaleRequest{Amount: "1.00", PaymentMethodNonce: "fake-nonce"})
	if err != nil {
		t.Fatalf("Sale lỗi: %v", err)
	}
	assert.True(t, result.Success)
	assert.Equal(t, "txn-implied", result.TransactionID)
}

func TestCall_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateToken(context.Background())
	if err == nil {
		t.Fatal("Status không phải 2xx phải trả về lỗi")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("Lỗi phải là *common.Error, nhận %T", err)
	}
	assert.Equal(t, common.ErrCodePaymentGateway.Code, customErr.Code.Code)
}

func TestCall_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block // Giữ request cho đến khi test kết thúc
	}))
	defer server.Close()
	defer close(block)

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.GenerateToken(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Hủy context phải trả về lỗi ngay lập tức")
		}
		var customErr *common.Error
		if !errors.As(err, &customErr) {
			t.Fatalf("Lỗi phải là *common.Error, nhận %T", err)
		}
		assert.Equal(t, common.ErrCodePaymentGateway.Code, customErr.Code.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("GenerateToken không trả về sau khi context bị hủy")
	}
}
