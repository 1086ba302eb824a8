package usecase

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/avolkov/mediaseek/internal/core/ports"
)

// TitleNormalizer corrects a user query to the closest canonical title the
// metadata catalog knows. Any catalog failure degrades to the original
// query; Normalize never fails.
type TitleNormalizer struct {
	catalog    ports.TitleCatalog
	maxResults int
	threshold  int
	logger     *slog.Logger
}

func NewTitleNormalizer(catalog ports.TitleCatalog, maxResults, threshold int, logger *slog.Logger) *TitleNormalizer {
	if maxResults <= 0 {
		maxResults = 10
	}
	if threshold <= 0 {
		threshold = 70
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TitleNormalizer{
		catalog:    catalog,
		maxResults: maxResults,
		threshold:  threshold,
		logger:     logger,
	}
}

// Normalize returns the best-matching canonical title when its similarity
// to query exceeds the threshold, otherwise the query unchanged. Ties keep
// the first candidate in catalog response order.
func (n *TitleNormalizer) Normalize(ctx context.Context, query string) string {
	entries, err := n.catalog.SearchTitles(ctx, query, n.maxResults)
	if err != nil {
		n.logger.Warn("catalog lookup failed", "query", query, "error", err)
		return query
	}

	var candidates []string
	for _, entry := range entries {
		candidates = append(candidates, entry.Variants()...)
	}
	if len(candidates) == 0 {
		return query
	}

	best := ""
	bestScore := -1
	for _, candidate := range candidates {
		if score := similarityRatio(candidate, query); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore > n.threshold {
		return best
	}
	return query
}

// similarityRatio is a symmetric 0-100 similarity derived from edit
// distance over lowercased input; 100 means identical.
func similarityRatio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	distance := levenshtein.ComputeDistance(a, b)
	return int(math.Round(float64(total-distance) / float64(total) * 100))
}
