// Package meili implements the content-source port on Meilisearch. Every
// configured source id maps to one index holding that channel's messages;
// an external indexer owns the documents, this adapter only searches.
package meili

import (
	"context"
	"encoding/json"
	"fmt"

	meili "github.com/meilisearch/meilisearch-go"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

const defaultPageSize = 50

type Searcher struct {
	client      meili.ServiceManager
	indexPrefix string
	pageSize    int64
}

func New(url, apiKey, indexPrefix string) *Searcher {
	return &Searcher{
		client:      meili.New(url, meili.WithAPIKey(apiKey)),
		indexPrefix: indexPrefix,
		pageSize:    defaultPageSize,
	}
}

// Healthy reports whether the search backend answers.
func (s *Searcher) Healthy() bool {
	_, err := s.client.Health()
	return err == nil
}

// SearchMessages scans the source's index fully once, page by page, in the
// index's native ranking order.
func (s *Searcher) SearchMessages(ctx context.Context, sourceID, query string) ([]domain.SourceItem, error) {
	index := s.client.Index(s.indexPrefix + sourceID)

	var items []domain.SourceItem
	for offset := int64(0); ; offset += s.pageSize {
		resp, err := index.SearchWithContext(ctx, query, &meili.SearchRequest{
			Limit:  s.pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("meilisearch query %s: %w", sourceID, err)
		}
		for _, hit := range resp.Hits {
			items = append(items, hitToItem(hit))
		}
		if int64(len(resp.Hits)) < s.pageSize {
			return items, nil
		}
	}
}

func hitToItem(hit meili.Hit) domain.SourceItem {
	return domain.SourceItem{
		Text:    decodeString(hit, "text"),
		Caption: decodeString(hit, "caption"),
		Link:    decodeString(hit, "link"),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
