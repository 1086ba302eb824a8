package usecase

import (
	"fmt"
	"strings"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

// User-facing texts. The transport renders them as-is.
const (
	resultsHeader  = "Here is the results 👇"
	researchHeader = "Search Results 👇"
	searchingText  = "Searching.. 💥"
	genericError   = "❌ Something went wrong. Try again later."

	notForYouNotice   = "That's not for you! 👀"
	requestSentNotice = "✅ Request Sent To Admin"
	requestAdminLabel = "🎯 Request To Admin 🎯"
)

func formatResults(header string, matches []domain.SearchMatch) string {
	var b strings.Builder
	b.WriteString(header)
	for _, m := range matches {
		fmt.Fprintf(&b, "\n\n♻️ %s\n🔗 %s", m.DisplayName, m.Link)
	}
	return b.String()
}

// formatNoResults mentions the raw query only when the correction actually
// changed it.
func formatNoResults(raw, normalized string) string {
	if raw != "" && raw != normalized {
		return fmt.Sprintf("No results found for %q or its correction %q.\nRequest this title from the admin?", raw, normalized)
	}
	return fmt.Sprintf("No results found for %q.\nRequest this title from the admin?", normalized)
}

func formatAdminRequest(query string) string {
	return "#RequestFromYourGroup\n\nName: " + query
}

func escalationActions(query string) []domain.Action {
	return []domain.Action{{Label: requestAdminLabel, Payload: escalationPayload(query)}}
}
