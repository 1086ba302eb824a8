package usecase

import (
	"regexp"
	"strings"
)

// casualMarkers reject question-like or conversational messages. Markers
// match as case-insensitive substrings, community slang included.
var casualMarkers = []string{
	"kya", "kaise", "konsi", "kon", "what", "how", "which", "who", "hai", "h", "koi",
}

// titlePattern matches one or more capitalized words separated by whitespace.
var titlePattern = regexp.MustCompile(`^([A-Z][a-z]*\s*)+$`)

// TitleClassifier decides whether free text is plausibly a media title
// worth searching for. Pure and deterministic; the marker table and the
// pattern are data, not control flow.
type TitleClassifier struct {
	markers     []string
	pattern     *regexp.Regexp
	maxTokens   int
	shortTokens int
}

func NewTitleClassifier() *TitleClassifier {
	return &TitleClassifier{
		markers:     casualMarkers,
		pattern:     titlePattern,
		maxTokens:   5,
		shortTokens: 3,
	}
}

// IsPotentialTitle reports whether text looks like a title: short, free of
// casual-speech markers and either capitalized-word shaped or at most
// three tokens long.
func (c *TitleClassifier) IsPotentialTitle(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	tokens := strings.Fields(text)
	if len(tokens) > c.maxTokens {
		return false
	}

	lower := strings.ToLower(text)
	for _, marker := range c.markers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	if c.pattern.MatchString(text) {
		return true
	}
	return len(tokens) <= c.shortTokens
}
