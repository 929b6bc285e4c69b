package trends

import (
	"math"
	"strings"
	"time"
	"unicode"

	"resume-insights/internal/contract"
)

// DefaultKeywordDensity is used when the density cannot be measured.
const DefaultKeywordDensity = 5.0

// Derive builds the trend point for a completed analysis of text.
func Derive(result contract.AnalysisResult, text string, at time.Time) contract.TrendPoint {
	return contract.TrendPoint{
		Timestamp:      at.UTC(),
		ATSScore:       clamp(result.ATSCompatibilityScore),
		Readability:    clamp(result.WritingStyleAnalysis.Clarity),
		KeywordDensity: clamp(KeywordDensity(text, result.KeywordMatches.Matched)),
	}
}

// KeywordDensity counts occurrences of the matched keywords per 100 words of text.
// Keywords match whole words, case-insensitively; multi-word keywords match as phrases.
func KeywordDensity(text string, keywords []string) float64 {
	words := splitWords(text)
	if len(words) == 0 || len(keywords) == 0 {
		return DefaultKeywordDensity
	}

	hits := 0
	for _, kw := range keywords {
		phrase := splitWords(kw)
		if len(phrase) == 0 {
			continue
		}
		for i := 0; i+len(phrase) <= len(words); i++ {
			if equalWords(words[i:i+len(phrase)], phrase) {
				hits++
			}
		}
	}
	return float64(hits) * 100 / float64(len(words))
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func equalWords(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
