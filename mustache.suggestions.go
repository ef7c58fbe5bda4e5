package mustache

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SuggestPartials returns up to max names from candidates that look like
// target, closest first. Candidates containing target's characters in order
// rank ahead of those that are merely a few edits away.
func SuggestPartials(target string, candidates []string, max int) []string {
	if target == "" || len(candidates) == 0 || max <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	sort.Stable(ranks)

	seen := make(map[string]struct{}, max)
	suggestions := make([]string, 0, max)
	add := func(name string) {
		if _, dup := seen[name]; dup || len(suggestions) >= max {
			return
		}
		seen[name] = struct{}{}
		suggestions = append(suggestions, name)
	}
	for _, rank := range ranks {
		add(rank.Target)
	}

	// Typos that drop or swap characters are not subsequence matches.
	maxDistance := len(target) / 2
	if maxDistance < 2 {
		maxDistance = 2
	}
	type scored struct {
		name     string
		distance int
	}
	var near []scored
	lower := strings.ToLower(target)
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate)); d <= maxDistance {
			near = append(near, scored{name: candidate, distance: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].distance < near[j].distance })
	for _, s := range near {
		add(s.name)
	}

	if len(suggestions) == 0 {
		return nil
	}
	return suggestions
}
