package courses

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-insights/internal/contract"
)

const (
	// DefaultMaxResults is used when callers pass a non-positive maxResults.
	DefaultMaxResults = 6

	minResults     = 3
	freeVideoShare = 0.6
	exactPerSkill  = 2
)

// Match turns missing skills into learning recommendations. It never fails and is deterministic:
// identical input yields identical output. The result holds between min(3, maxResults) and
// maxResults entries with no duplicate (title, platform) pair.
func Match(missingSkills []string, maxResults int) []contract.CourseRecommendation {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	targets := resolveTargets(missingSkills)
	p := newPicker(maxResults)

	reserveFreeVideos(p, targets, int(math.Ceil(float64(maxResults)*freeVideoShare)))
	addExactMatches(p, targets)
	addPartialMatches(p, targets)
	addGenericFallback(p, min(minResults, maxResults))

	return p.out
}

type target struct {
	skill   string
	index   int
	exact   *catalogEntry
	partial []partialCandidate
}

type partialCandidate struct {
	skill      string
	skillIndex int
	entry      catalogEntry
	score      float64
}

func resolveTargets(missingSkills []string) []target {
	seen := make(map[string]bool, len(missingSkills))
	out := make([]target, 0, len(missingSkills))
	for _, raw := range missingSkills {
		skill := strings.TrimSpace(raw)
		tokens := tokenize(skill)
		if tokens == "" || seen[tokens] {
			continue
		}
		seen[tokens] = true
		t := target{skill: skill, index: len(out)}
		if entry, ok := lookupExact(skill); ok {
			t.exact = &entry
		} else {
			t.partial = partialCandidatesFor(skill, t.index)
		}
		out = append(out, t)
	}
	return out
}

// partialCandidatesFor scores every catalog key that contains, or is contained in, the skill
// on token boundaries. The score is max(|key|/|skill|, |skill|/|key|).
func partialCandidatesFor(skill string, index int) []partialCandidate {
	tokens := tokenize(skill)
	out := make([]partialCandidate, 0, 2)
	for _, entry := range catalogIndex {
		if entry.tokens == tokens {
			continue
		}
		if !containsTokens(tokens, entry.tokens) && !containsTokens(entry.tokens, tokens) {
			continue
		}
		out = append(out, partialCandidate{
			skill:      skill,
			skillIndex: index,
			entry:      entry,
			score:      overlapScore(entry.key, skill),
		})
	}
	sortCandidates(out)
	return out
}

func overlapScore(key, skill string) float64 {
	k := float64(utf8.RuneCountInString(key))
	s := float64(utf8.RuneCountInString(skill))
	if k == 0 || s == 0 {
		return 0
	}
	return math.Max(k/s, s/k)
}

func sortCandidates(items []partialCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.skillIndex != b.skillIndex {
			return a.skillIndex < b.skillIndex
		}
		return a.entry.tokens < b.entry.tokens
	})
}

func reserveFreeVideos(p *picker, targets []target, quota int) {
	quota = min(quota, p.max)
	pools := make([][]contract.CourseRecommendation, len(targets))
	for i, t := range targets {
		var entries []contract.CourseRecommendation
		if t.exact != nil {
			entries = t.exact.entries
		} else if len(t.partial) > 0 {
			entries = t.partial[0].entry.entries
		}
		for _, e := range entries {
			if isFreeVideo(e) {
				pools[i] = append(pools[i], e)
			}
		}
	}

	added := 0
	for round := 0; added < quota; round++ {
		progressed := false
		for i, t := range targets {
			if round >= len(pools[i]) {
				continue
			}
			progressed = true
			if added < quota && p.add(pools[i][round], t.skill) {
				added++
			}
		}
		if !progressed {
			return
		}
	}
}

func addExactMatches(p *picker, targets []target) {
	for _, t := range targets {
		if t.exact == nil {
			continue
		}
		taken := 0
		for taken < exactPerSkill && !p.full() {
			next, ok := p.nextDiverse(t.exact.entries, t.skill)
			if !ok {
				break
			}
			p.add(next, t.skill)
			taken++
		}
	}
}

func addPartialMatches(p *picker, targets []target) {
	byKey := make(map[string]partialCandidate)
	for _, t := range targets {
		for _, c := range t.partial {
			existing, ok := byKey[c.entry.tokens]
			if !ok || c.score > existing.score {
				byKey[c.entry.tokens] = c
			}
		}
	}
	candidates := make([]partialCandidate, 0, len(byKey))
	for _, c := range byKey {
		candidates = append(candidates, c)
	}
	sortCandidates(candidates)

	for _, c := range candidates {
		if p.full() {
			return
		}
		for _, e := range c.entry.entries {
			if p.add(e, c.skill) {
				break
			}
		}
	}
}

func addGenericFallback(p *picker, floor int) {
	for _, e := range genericResources {
		if len(p.out) >= floor || p.full() {
			return
		}
		p.add(e, GenericSkillMatch)
	}
}

func isFreeVideo(c contract.CourseRecommendation) bool {
	return c.SourceType == contract.SourceYouTube && priceRank(c.Price) == 0
}

type courseKey struct {
	title    string
	platform string
}

type picker struct {
	max       int
	out       []contract.CourseRecommendation
	seen      map[courseKey]bool
	platforms map[string]map[string]bool
}

func newPicker(max int) *picker {
	// max may be far larger than anything the catalog can fill.
	size := min(max, catalogSize)
	return &picker{
		max:       max,
		out:       make([]contract.CourseRecommendation, 0, size),
		seen:      make(map[courseKey]bool, size),
		platforms: make(map[string]map[string]bool),
	}
}

func (p *picker) full() bool {
	return len(p.out) >= p.max
}

func keyOf(c contract.CourseRecommendation) courseKey {
	return courseKey{title: strings.ToLower(c.Title), platform: strings.ToLower(c.Platform)}
}

func (p *picker) add(c contract.CourseRecommendation, skill string) bool {
	if p.full() || p.seen[keyOf(c)] {
		return false
	}
	p.seen[keyOf(c)] = true
	c.SkillMatch = skill
	p.out = append(p.out, c)
	if p.platforms[skill] == nil {
		p.platforms[skill] = make(map[string]bool)
	}
	p.platforms[skill][strings.ToLower(c.Platform)] = true
	return true
}

// nextDiverse returns the first unselected entry on a platform not yet used for this skill,
// falling back to the first unselected entry in price order.
func (p *picker) nextDiverse(entries []contract.CourseRecommendation, skill string) (contract.CourseRecommendation, bool) {
	var fallback *contract.CourseRecommendation
	for i := range entries {
		if p.seen[keyOf(entries[i])] {
			continue
		}
		if !p.platforms[skill][strings.ToLower(entries[i].Platform)] {
			return entries[i], true
		}
		if fallback == nil {
			fallback = &entries[i]
		}
	}
	if fallback == nil {
		return contract.CourseRecommendation{}, false
	}
	return *fallback, true
}

// tokenize lowercases and collapses every run of non-alphanumeric runes into one space.
func tokenize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func containsTokens(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
