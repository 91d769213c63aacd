// Package elasticsearch mirrors orders into a search index for administrators.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

const ordersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "buyer":      {"type": "keyword"},
      "status":     {"type": "keyword"},
      "products":   {"type": "keyword"},
      "amount":     {"type": "keyword"},
      "createdAt":  {"type": "date"},
      "updatedAt":  {"type": "date"}
    }
  }
}`

type OrderIndex struct {
	client *es.Client
	index  string
}

func NewOrderIndex(client *es.Client, index string) *OrderIndex {
	return &OrderIndex{client: client, index: index}
}

// Init creates the index mapping if needed.
func (x *OrderIndex) Init(ctx context.Context) error {
	return helpers.EnsureIndex(ctx, x.client, x.index, ordersMapping)
}

type orderDoc struct {
	ID        string         `json:"id"`
	Buyer     string         `json:"buyer"`
	Status    string         `json:"status"`
	Products  []string       `json:"products"`
	Amount    string         `json:"amount"`
	Payment   entity.Payment `json:"payment"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

func toDoc(o *entity.Order) orderDoc {
	return orderDoc{
		ID:        o.ID,
		Buyer:     o.BuyerID,
		Status:    string(o.Status),
		Products:  o.Products,
		Amount:    o.Payment.Transaction.Amount,
		Payment:   o.Payment,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (d orderDoc) order() entity.Order {
	o := entity.Order{
		ID:       d.ID,
		BuyerID:  d.Buyer,
		Status:   entity.OrderStatus(d.Status),
		Products: d.Products,
		Payment:  d.Payment,
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return o
}

func (x *OrderIndex) IndexOrder(ctx context.Context, o *entity.Order) error {
	b, err := json.Marshal(toDoc(o))
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req := esapi.IndexRequest{Index: x.index, DocumentID: o.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return &helpers.ESStatusError{Status: res.Status()}
	}
	return nil
}

func (x *OrderIndex) SearchOrders(ctx context.Context, q application.OrderQuery) ([]entity.Order, error) {
	size := q.Size
	switch {
	case size <= 0:
		size = 25
	case size > 100:
		size = 100
	}
	filters := make([]map[string]any, 0, 2)
	if q.Status != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"status": q.Status}})
	}
	if q.BuyerID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"buyer": q.BuyerID}})
	}
	query := map[string]any{
		"query": map[string]any{"bool": map[string]any{"filter": filters}},
		"sort":  []map[string]any{{"createdAt": map[string]any{"order": "desc"}}},
		"size":  size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := x.client.Search(
		x.client.Search.WithContext(c),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, &helpers.ESStatusError{Status: res.Status()}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source orderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Order, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.order())
	}
	return out, nil
}

var _ application.OrderIndexer = (*OrderIndex)(nil)
