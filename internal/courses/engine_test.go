package courses

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"resume-insights/internal/contract"
)

func TestMatchDeterminism(t *testing.T) {
	skills := []string{"Kubernetes", "Advanced Python Programming", "JavaScript", "Negotiation"}

	first := Match(skills, 6)
	second := Match(skills, 6)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic course ordering")
	}
}

func TestMatchBounds(t *testing.T) {
	many := []string{"Python", "Java", "Go", "SQL", "Docker", "AWS", "React", "Git"}
	cases := []struct {
		name   string
		skills []string
		max    int
		minLen int
		maxLen int
	}{
		{name: "empty_skills_default_max", skills: nil, max: 0, minLen: 3, maxLen: DefaultMaxResults},
		{name: "many_skills_capped", skills: many, max: 4, minLen: 3, maxLen: 4},
		{name: "max_below_floor", skills: nil, max: 2, minLen: 2, maxLen: 2},
		{name: "unknown_skill", skills: []string{"Underwater Basket Weaving"}, max: 6, minLen: 3, maxLen: 6},
		{name: "huge_max", skills: []string{"Go"}, max: math.MaxInt, minLen: 3, maxLen: catalogSize},
		{name: "huge_max_many_skills", skills: many, max: math.MaxInt, minLen: len(many), maxLen: catalogSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Match(tc.skills, tc.max)
			if len(got) < tc.minLen || len(got) > tc.maxLen {
				t.Fatalf("expected between %d and %d results, got %d", tc.minLen, tc.maxLen, len(got))
			}
			assertUnique(t, got)
		})
	}
}

func TestMatchEmptySkillsUsesGenericResources(t *testing.T) {
	got := Match([]string{" ", ""}, 6)
	if len(got) != minResults {
		t.Fatalf("expected %d generic results, got %d", minResults, len(got))
	}
	for _, c := range got {
		if c.SkillMatch != GenericSkillMatch {
			t.Fatalf("expected generic skill match, got %q", c.SkillMatch)
		}
	}
}

func TestMatchJavaScriptIncludesFreeVideo(t *testing.T) {
	got := Match([]string{"JavaScript"}, 6)
	for _, c := range got {
		if c.SkillMatch == "JavaScript" && c.SourceType == contract.SourceYouTube && c.Price == contract.PriceFree {
			return
		}
	}
	t.Fatalf("expected a free YouTube course for JavaScript, got %#v", got)
}

func TestMatchExactIsCaseInsensitive(t *testing.T) {
	got := Match([]string{"kubernetes"}, 6)
	found := false
	for _, c := range got {
		if c.SkillMatch == "kubernetes" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected lowercase skill to match the Kubernetes catalog entry, got %#v", got)
	}
}

func TestMatchPartialSkill(t *testing.T) {
	got := Match([]string{"Advanced Python Programming"}, 6)
	found := false
	for _, c := range got {
		if c.SkillMatch == "Advanced Python Programming" && strings.Contains(c.Title, "Python") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Python course for the partial skill, got %#v", got)
	}
}

func TestMatchPartialRespectsTokenBoundaries(t *testing.T) {
	cands := partialCandidatesFor("MongoDB", 0)
	for _, c := range cands {
		if c.entry.key == "Go" {
			t.Fatalf("expected Go not to match inside MongoDB")
		}
	}
}

func TestMatchExactPrefersCheaperThenDiversePlatform(t *testing.T) {
	p := newPicker(6)
	targets := resolveTargets([]string{"Java"})
	addExactMatches(p, targets)

	if len(p.out) != 2 {
		t.Fatalf("expected two exact picks, got %d", len(p.out))
	}
	if p.out[0].Price != contract.PriceFree {
		t.Fatalf("expected free entry first, got %q", p.out[0].Price)
	}
	if p.out[0].Platform == p.out[1].Platform {
		t.Fatalf("expected different platforms, got %q twice", p.out[0].Platform)
	}
}

func TestSortCandidatesRanking(t *testing.T) {
	cases := []struct {
		name     string
		items    []partialCandidate
		expected string
	}{
		{
			name: "higher_score_first",
			items: []partialCandidate{
				{skillIndex: 0, entry: catalogEntry{tokens: "a"}, score: 1.5},
				{skillIndex: 1, entry: catalogEntry{tokens: "b"}, score: 3},
			},
			expected: "b",
		},
		{
			name: "earlier_skill_breaks_tie",
			items: []partialCandidate{
				{skillIndex: 2, entry: catalogEntry{tokens: "a"}, score: 2},
				{skillIndex: 1, entry: catalogEntry{tokens: "b"}, score: 2},
			},
			expected: "b",
		},
		{
			name: "key_breaks_remaining_tie",
			items: []partialCandidate{
				{skillIndex: 0, entry: catalogEntry{tokens: "z"}, score: 2},
				{skillIndex: 0, entry: catalogEntry{tokens: "m"}, score: 2},
			},
			expected: "m",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := append([]partialCandidate{}, tc.items...)
			sortCandidates(items)
			if items[0].entry.tokens != tc.expected {
				t.Fatalf("expected first key %q, got %q", tc.expected, items[0].entry.tokens)
			}
		})
	}
}

func TestFreeVideoQuota(t *testing.T) {
	got := Match([]string{"Python", "Docker", "SQL", "AWS", "Excel", "Git"}, 5)
	videos := 0
	for _, c := range got[:3] {
		if isFreeVideo(c) {
			videos++
		}
	}
	if videos != 3 {
		t.Fatalf("expected the reserved slots to lead with free videos, got %#v", got)
	}
}

func TestTokenize(t *testing.T) {
	cases := map[string]string{
		"Node.js":          "node js",
		"  CI/CD ":         "ci cd",
		"Machine-Learning": "machine learning",
		"":                 "",
	}
	for in, want := range cases {
		if got := tokenize(in); got != want {
			t.Fatalf("tokenize(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertUnique(t *testing.T, items []contract.CourseRecommendation) {
	t.Helper()
	seen := make(map[courseKey]bool, len(items))
	for _, c := range items {
		if seen[keyOf(c)] {
			t.Fatalf("duplicate course %q on %q", c.Title, c.Platform)
		}
		seen[keyOf(c)] = true
	}
}
