package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deliveryboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDispatcher_SendsStoreVocabPayload(t *testing.T) {
	type captured struct {
		contentType string
		body        []byte
	}
	ch := make(chan captured, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ch <- captured{contentType: r.Header.Get("Content-Type"), body: b}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "tenant-abc", zap.NewNop())
	d.send(3, model.StatusReadyForPickup, "4521")

	got := <-ch
	assert.Equal(t, "application/json", got.contentType)

	var p map[string]string
	assert.NoError(t, json.Unmarshal(got.body, &p))
	assert.Equal(t, "tenant-abc", p["tenantId"])
	assert.Equal(t, "READY_FOR_PICKUP", p["newStatus"])
	assert.Equal(t, "4521", p["orderNumber"])
}

func TestDispatcher_DispatchDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	d := NewDispatcher(srv.URL, "tenant-abc", zap.NewNop())

	start := time.Now()
	d.Dispatch(3, model.StatusDelivered, "4521")
	//サーバが応答を握っていてもDispatch自体はすぐ戻る
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_SwallowsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "tenant-abc", zap.NewNop())
	//panicせず静かに終わること
	d.send(3, model.StatusDelivered, "4521")
}

func TestDispatcher_SwallowsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() //先に閉じて接続拒否を作る

	d := NewDispatcher(srv.URL, "tenant-abc", zap.NewNop())
	d.send(3, model.StatusDelivered, "4521")
}

func TestDispatcher_SkipsUnknownStatus(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "tenant-abc", zap.NewNop())
	d.send(3, model.OrderStatus("SHIPPED"), "4521")

	assert.False(t, called)
}

func TestDispatcher_TenantPlaceholderIsDeterministic(t *testing.T) {
	d := NewDispatcher("http://example.invalid", "", zap.NewNop())

	a := d.resolveTenantID(7)
	b := d.resolveTenantID(7)
	c := d.resolveTenantID(8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	//uuid形式
	assert.Len(t, a, 36)

	//設定値があればそちらを優先
	configured := NewDispatcher("http://example.invalid", "tenant-abc", zap.NewNop())
	assert.Equal(t, "tenant-abc", configured.resolveTenantID(7))
}
