// Package search keeps the product catalog in an Elasticsearch index and
// answers the gallery's text queries from it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const DefaultSize = 100

var ErrSearch = errors.New("search error")

func NewClient(ctx context.Context, cfg *config.Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("svc", "search")
	l.Info("es_connect", "url", cfg.ES_URL, "user", cfg.ES_USER)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrSearch, err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: info: %w", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("es_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: info: %s", ErrSearch, res.Status())
	}

	l.Info("es_connected")
	return client, nil
}

type document struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       string  `json:"price"`
	Rating      float64 `json:"rating"`
}

type Index struct {
	Client *elasticsearch.Client
	Name   string
	Size   int
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{Client: client, Name: name, Size: DefaultSize}
}

// Put indexes every product under its catalog id, so repeated calls
// overwrite instead of duplicating.
func (ix *Index) Put(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		doc := document{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price.StringFixed(2),
			Rating:      p.Rating,
		}
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("%w: encode %s: %w", ErrSearch, p.ID, err)
		}

		res, err := ix.Client.Index(
			ix.Name,
			&buf,
			ix.Client.Index.WithContext(ctx),
			ix.Client.Index.WithDocumentID(p.ID),
			ix.Client.Index.WithRefresh("true"),
		)
		if err != nil {
			return fmt.Errorf("%w: index %s: %w", ErrSearch, p.ID, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("%w: index %s: %s", ErrSearch, p.ID, res.Status())
		}
	}
	return nil
}

func queryBody(query string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
}

// Search returns the ids of matching products, best hit first.
func (ix *Index) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	size := ix.Size
	if size <= 0 {
		size = DefaultSize
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(queryBody(query, size)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Name),
		ix.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearch, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrSearch, err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}
