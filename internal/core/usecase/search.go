package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/mediaseek/internal/core/domain"
	"github.com/avolkov/mediaseek/internal/core/ports"
)

// CatalogSearcher scans configured content sources in order and collects
// deduplicated matches. No ranking beyond source order and each source's
// native order.
type CatalogSearcher struct {
	sources ports.SourceSearcher
}

func NewCatalogSearcher(sources ports.SourceSearcher) *CatalogSearcher {
	return &CatalogSearcher{sources: sources}
}

// Search runs the query against every source id in the given order. A
// failing source does not stop the scan; its error is joined into the
// returned error alongside whatever the other sources produced.
func (s *CatalogSearcher) Search(ctx context.Context, sourceIDs []string, query string) ([]domain.SearchMatch, error) {
	var matches []domain.SearchMatch
	seen := make(map[string]struct{})
	var errs []error

	for _, sourceID := range sourceIDs {
		items, err := s.sources.SearchMessages(ctx, sourceID, query)
		if err != nil {
			errs = append(errs, fmt.Errorf("search source %s: %w", sourceID, err))
			continue
		}
		for _, item := range items {
			name := displayName(item)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			matches = append(matches, domain.SearchMatch{DisplayName: name, Link: item.Link})
		}
	}

	return matches, errors.Join(errs...)
}

// displayName is the first line of the item's text, falling back to the
// caption when the text is absent.
func displayName(item domain.SourceItem) string {
	text := item.Text
	if text == "" {
		text = item.Caption
	}
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
