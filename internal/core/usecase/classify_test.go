package usecase

import "testing"

func TestIsPotentialTitle(t *testing.T) {
	classifier := NewTitleClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t ", false},
		{"capitalized words", "Attack On Titan", true},
		{"single word", "Naruto", true},
		{"lowercase short", "one piece", true},
		{"question marker", "what is this movie", false},
		{"marker case insensitive", "WHICH one", false},
		{"marker inside word", "Hunter", false},
		{"hindi marker", "konsi movie", false},
		{"six tokens", "a b c d e f", false},
		{"long sentence", "I really loved watching it yesterday evening", false},
		{"four lowercase tokens", "some long spaced words", false},
		{"four capitalized tokens", "Attack On Titan Final", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsPotentialTitle(tt.text); got != tt.want {
				t.Fatalf("IsPotentialTitle(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsPotentialTitleRejectsAnyLongText(t *testing.T) {
	classifier := NewTitleClassifier()
	if classifier.IsPotentialTitle("One Two Free Four Five Six") {
		t.Fatalf("expected false for more than five tokens")
	}
}
