package repository

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/search"
)

// maxTextMatches caps how many IDs one free-text lookup hands to SQL.
const maxTextMatches = 1000

const productMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"description": { "type": "text", "fields": { "raw": { "type": "keyword", "ignore_above": 32766 } } },
			"product_code": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"seller_id": { "type": "keyword" },
			"price": { "type": "scaled_float", "scaling_factor": 100 },
			"created_at": { "type": "date" }
		}
	}
}`

type productDocument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Code        string      `json:"product_code"`
	CategoryID  string      `json:"category_id"`
	SellerID    string      `json:"seller_id"`
	Price       interface{} `json:"price,omitempty"`
	CreatedAt   string      `json:"created_at"`
}

type ESRepository struct {
	client *search.Client
	index  string
}

func NewESRepository(client *search.Client, index string) *ESRepository {
	return &ESRepository{client: client, index: index}
}

// EnsureIndex creates the product index if it does not exist yet.
func (r *ESRepository) EnsureIndex(ctx context.Context) error {
	return r.client.CreateIndex(ctx, r.index, productMapping)
}

func (r *ESRepository) IndexProduct(ctx context.Context, p *model.Product) error {
	return r.client.Index(ctx, r.index, p.ID, newProductDocument(p))
}

func (r *ESRepository) IndexProducts(ctx context.Context, products []model.Product) error {
	docs := make(map[string]interface{}, len(products))
	for i := range products {
		docs[products[i].ID] = newProductDocument(&products[i])
	}
	return r.client.Bulk(ctx, r.index, docs)
}

func newProductDocument(p *model.Product) productDocument {
	doc := productDocument{
		Name:        p.Name,
		Description: p.Description,
		Code:        p.Code,
		CategoryID:  p.CategoryID,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.Price.Valid {
		doc.Price = p.Price.Decimal.InexactFloat64()
	}
	return doc
}

// MatchIDs reports complete=false when more than maxTextMatches documents
// match, since the returned IDs are then only a sample.
func (r *ESRepository) MatchIDs(ctx context.Context, term string) ([]string, bool, error) {
	res, err := r.client.Search(ctx, r.index, textQuery(term))
	if err != nil {
		return nil, false, err
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, res.Hits.Total.Value <= len(ids), nil
}

// textQuery matches term anywhere in the raw name or description, ignoring
// case, the same way the SQL ILIKE filter does.
func textQuery(term string) map[string]interface{} {
	pattern := "*" + wildcardEscaper.Replace(term) + "*"
	clause := func(field string) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{"value": pattern, "case_insensitive": true},
			},
		}
	}
	return map[string]interface{}{
		"_source": false,
		"size":    maxTextMatches,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{clause("name.raw"), clause("description.raw")},
				"minimum_should_match": 1,
			},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
