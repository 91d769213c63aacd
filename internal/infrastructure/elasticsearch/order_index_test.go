package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestIndex(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*OrderIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return NewOrderIndex(client, "orders"), &calls
}

func TestIndexOrderWritesDocument(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err := idx.IndexOrder(context.Background(), &entity.Order{
		ID:        "o1",
		BuyerID:   "b1",
		Status:    entity.OrderShipped,
		Products:  []string{"p1"},
		Payment:   entity.Payment{Success: true, Transaction: entity.PaymentTransaction{Amount: "9.99"}},
		CreatedAt: at,
		UpdatedAt: at,
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/orders/_doc/o1", call.path)
	assert.Equal(t, "Shipped", call.body["status"])
	assert.Equal(t, "b1", call.body["buyer"])
	assert.Equal(t, "9.99", call.body["amount"])
}

func TestIndexOrderReportsErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{}`))
	})
	err := idx.IndexOrder(context.Background(), &entity.Order{ID: "o1"})
	var se *helpers.ESStatusError
	assert.ErrorAs(t, err, &se)
}

func TestSearchOrdersBuildsFilteredQuery(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"id":"o2","buyer":"b1","status":"Shipped","products":["p1"],"createdAt":"2024-05-02T00:00:00Z"}},
			{"_source":{"id":"o1","buyer":"b1","status":"Shipped","products":["p2"],"createdAt":"2024-05-01T00:00:00Z"}}
		]}}`))
	})

	orders, err := idx.SearchOrders(context.Background(), application.OrderQuery{Status: "Shipped", BuyerID: "b1", Size: 500})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, entity.OrderShipped, orders[0].Status)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), orders[0].CreatedAt)

	require.Len(t, *calls, 1)
	body := (*calls)[0].body
	assert.Equal(t, float64(100), body["size"])
	filters := body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	assert.Len(t, filters, 2)
}

func TestInitCreatesMissingIndex(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	require.NoError(t, idx.Init(context.Background()))
	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPut, (*calls)[1].method)
	assert.Contains(t, (*calls)[1].body, "mappings")
}
