package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"shop_commerce/internal/common"
	"shop_commerce/internal/logger"
)

// ClientConfig cấu hình kết nối đến cổng thanh toán
type ClientConfig struct {
	BaseURL    string        // URL gốc API của cổng thanh toán
	MerchantID string        // Merchant ID
	PublicKey  string        // Public key của merchant (basic auth username)
	PrivateKey string        // Private key của merchant (basic auth password)
	Timeout    time.Duration // Timeout cho mỗi lần gọi
}

// RestClient là implementation của Gateway qua REST API
type RestClient struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewRestClient tạo mới RestClient
func NewRestClient(cfg ClientConfig) *RestClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RestClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// callResult gói kết quả của một lần gọi API chạy nền
type callResult struct {
	body map[string]interface{}
	err  error
}

// call thực hiện request đến cổng thanh toán trong goroutine riêng
// và chờ kết quả qua channel, đồng thời tôn trọng ctx.Done()
// Channel có buffer 1 để goroutine không bị leak khi ctx bị hủy trước
func (g *RestClient) call(ctx context.Context, method string, path string, payload interface{}) (map[string]interface{}, error) {
	resultCh := make(chan callResult, 1)

	go func() {
		body, err := g.doRequest(ctx, method, path, payload)
		resultCh <- callResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, common.NewGatewayError(ctx.Err())
	case result := <-resultCh:
		return result.body, result.err
	}
}

// doRequest gửi HTTP request và parse JSON response
func (g *RestClient) doRequest(ctx context.Context, method string, path string, payload interface{}) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/merchants/%s%s", g.cfg.BaseURL, g.cfg.MerchantID, path)

	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, common.NewGatewayError(err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, common.NewGatewayError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.PublicKey, g.cfg.PrivateKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Error("💳 [GATEWAY] Lỗi khi gọi cổng thanh toán")
		return nil, common.NewGatewayError(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewGatewayError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"statusCode": resp.StatusCode,
			"response":   string(bodyBytes),
		}).Error("💳 [GATEWAY] Cổng thanh toán trả về lỗi")
		return nil, common.NewGatewayError(fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var body map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil, common.NewGatewayError(err)
	}
	return body, nil
}

// GenerateToken phát hành client token mới cho frontend
func (g *RestClient) GenerateToken(ctx context.Context) (*TokenResult, error) {
	body, err := g.call(ctx, http.MethodPost, "/client_token", nil)
	if err != nil {
		return nil, err
	}

	clientToken, _ := body["clientToken"].(string)
	if clientToken == "" {
		return nil, common.NewGatewayError(fmt.Errorf("gateway response missing clientToken"))
	}

	return &TokenResult{
		ClientToken: clientToken,
		Raw:         body,
	}, nil
}

// Sale thực hiện giao dịch thanh toán từ nonce
// Giao dịch bị decline vẫn trả về error (không có đơn hàng nào được tạo khi sale thất bại)
func (g *RestClient) Sale(ctx context.Context, req *SaleRequest) (*SaleResult, error) {
	body, err := g.call(ctx, http.MethodPost, "/transactions", req)
	if err != nil {
		return nil, err
	}

	result := parseSaleResponse(body)
	if !result.Success {
		message, _ := body["message"].(string)
		if message == "" {
			message = "Giao dịch bị từ chối bởi cổng thanh toán"
		}
		logger.GetAppLogger().WithFields(logrus.Fields{
			"message": message,
		}).Warn("💳 [GATEWAY] Giao dịch bị từ chối")
		return nil, common.NewError(common.ErrCodePaymentDeclined, message, common.StatusInternalServerError, body)
	}

	return result, nil
}

// Refund hoàn tiền cho một giao dịch đã settle
func (g *RestClient) Refund(ctx context.Context, transactionID string, amount string) error {
	payload := map[string]interface{}{
		"amount": amount,
	}
	body, err := g.call(ctx, http.MethodPost, "/transactions/"+transactionID+"/refund", payload)
	if err != nil {
		return err
	}

	if success, ok := body["success"].(bool); ok && !success {
		message, _ := body["message"].(string)
		return common.NewGatewayError(fmt.Errorf("refund rejected: %s", message))
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"amount":         amount,
	}).Info("💳 [GATEWAY] Hoàn tiền thành công")
	return nil
}

// parseSaleResponse đọc kết quả sale từ blob JSON của cổng thanh toán
func parseSaleResponse(body map[string]interface{}) *SaleResult {
	result := &SaleResult{Raw: body}

	if success, ok := body["success"].(bool); ok {
		result.Success = success
	}
	if txn, ok := body["transaction"].(map[string]interface{}); ok {
		if id, ok := txn["id"].(string); ok {
			result.TransactionID = id
		}
		// Một số cổng chỉ trả transaction mà không có flag success riêng
		if _, hasSuccess := body["success"]; !hasSuccess && result.TransactionID != "" {
			result.Success = true
		}
	}
	return result
}
