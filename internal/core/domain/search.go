package domain

// Query is one user search request. It lives for a single pipeline run and
// is never persisted.
type Query struct {
	Text   string
	ChatID int64
	UserID int64
}

// CandidateTitle holds the localized title variants of one catalog entry.
type CandidateTitle struct {
	Romaji  string
	English string
	Native  string
}

// Variants returns the non-empty title strings in catalog field order.
func (t CandidateTitle) Variants() []string {
	variants := make([]string, 0, 3)
	for _, v := range []string{t.Romaji, t.English, t.Native} {
		if v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

// SourceItem is a raw item returned by a content-source search.
type SourceItem struct {
	Text    string
	Caption string
	Link    string
}

// SearchMatch is one deduplicated hit. Within a result set display names
// are unique, first occurrence wins.
type SearchMatch struct {
	DisplayName string
	Link        string
}

// GroupConfig is per-chat configuration owned by an external service.
// This core only reads it.
type GroupConfig struct {
	ChatID      int64
	SourceIDs   []string
	AdminUserID int64
}
