package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"deliveryboard/internal/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 通知は1回だけ試す。タイムアウト込みで最大10秒。
const requestTimeout = 10 * time.Second

// 外部エンドポイントが受け取るpayload。
type payload struct {
	TenantID    string `json:"tenantId"`
	NewStatus   string `json:"newStatus"`
	OrderNumber string `json:"orderNumber"`
}

// Dispatcher はステータス変更後のベストエフォート通知。
// リポジトリの書き込みが確定した後にだけ呼ばれ、失敗しても呼び出し元には何も返さない。
type Dispatcher struct {
	endpoint string
	tenantID string
	client   *http.Client
	logger   *zap.Logger
}

func NewDispatcher(endpoint string, tenantID string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: endpoint,
		tenantID: tenantID,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Dispatch はgoroutineを起動してすぐ戻る。呼び出し側は絶対に待たない。
func (d *Dispatcher) Dispatch(establishmentID int64, status model.OrderStatus, orderNumber string) {
	go d.send(establishmentID, status, orderNumber)
}

func (d *Dispatcher) send(establishmentID int64, status model.OrderStatus, orderNumber string) {
	store, ok := model.ToStoreStatus(status)
	if !ok {
		d.logger.Warn("notify: unknown status, skipping",
			zap.String("status", string(status)),
			zap.String("order_number", orderNumber))
		return
	}

	body, err := json.Marshal(payload{
		TenantID:    d.resolveTenantID(establishmentID),
		NewStatus:   string(store),
		OrderNumber: orderNumber,
	})
	if err != nil {
		d.logger.Warn("notify: marshal failed", zap.Error(err))
		return
	}

	resp, err := d.client.Post(d.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		//タイムアウトも接続エラーもここ。注文の遷移はもう確定しているので握りつぶす。
		d.logger.Warn("notify: webhook failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Warn("notify: webhook non-2xx",
			zap.String("order_number", orderNumber),
			zap.Int("status_code", resp.StatusCode))
	}
}

// resolveTenantID は設定済みのテナントIDを優先し、
// なければ店舗IDから決定的なプレースホルダを導出する。
func (d *Dispatcher) resolveTenantID(establishmentID int64) string {
	if d.tenantID != "" {
		return d.tenantID
	}
	seed := fmt.Sprintf("establishment-%d", establishmentID)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
