package tui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/skillsync/skillsync/internal/registry"
)

// fuzzyMatch checks whether pattern is a fuzzy match for str and returns a
// score. A higher score indicates a better match. Returns (0, false) if the
// pattern does not match at all.
//
// A subsequence match ("wrtr" → "Writer") is tried first. Failing that, a
// small edit distance is accepted so typos still find the skill. Matching
// is case-insensitive.
func fuzzyMatch(pattern, str string) (int, bool) {
	pLower := strings.ToLower(pattern)
	sLower := strings.ToLower(str)

	if pLower == "" {
		return 0, true
	}
	if strings.Contains(sLower, pLower) {
		// Substrings beat scattered subsequences of the same length.
		score, _ := subsequenceScore(pLower, sLower, str)
		return score + 10, true
	}
	if score, ok := subsequenceScore(pLower, sLower, str); ok {
		return score, true
	}

	dist := editDistance(pLower, sLower)
	threshold := min(max((max(len(pLower), len(sLower))+2)/3, 1), 2)
	if dist > threshold {
		return 0, false
	}
	return max(len(pLower)*2-dist*5, 1), true
}

// subsequenceScore checks if pattern is a subsequence of str and returns a
// score. Returns (0, false) if pattern is not a subsequence.
func subsequenceScore(pLower, sLower, strOrig string) (int, bool) {
	if len(pLower) > len(sLower) {
		return 0, false
	}

	score := 0
	pi := 0
	prev := -1
	for si := 0; si < len(sLower) && pi < len(pLower); si++ {
		if sLower[si] != pLower[pi] {
			continue
		}
		score++
		if prev == si-1 {
			score += 4 // consecutive
		}
		if si == 0 {
			score += 8
		} else if isBoundary(rune(strOrig[si-1]), rune(strOrig[si])) {
			score += 4
		}
		prev = si
		pi++
	}
	if pi < len(pLower) {
		return 0, false
	}

	// Prefer shorter targets.
	score -= len(sLower) - len(pLower)
	if pLower == sLower {
		score += 20
	}
	return score, true
}

// editDistance is the optimal string alignment distance: insertions,
// deletions, substitutions and adjacent transpositions.
func editDistance(a, b string) int {
	d := make([][]int, len(a)+1)
	for i := range d {
		d[i] = make([]int, len(b)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[len(a)][len(b)]
}

// isBoundary returns true if the transition from prev to cur starts a word.
func isBoundary(prev, cur rune) bool {
	if prev == '_' || prev == '-' || prev == ' ' || prev == '.' {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

// filterSkills returns the skills whose names match pattern, best first.
// Ties keep registry order. An empty pattern returns skills unchanged.
func filterSkills(pattern string, skills []registry.Skill) []registry.Skill {
	if strings.TrimSpace(pattern) == "" {
		return skills
	}
	type ranked struct {
		skill registry.Skill
		score int
	}
	var hits []ranked
	for _, s := range skills {
		if score, ok := fuzzyMatch(pattern, s.Name); ok {
			hits = append(hits, ranked{s, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]registry.Skill, len(hits))
	for i, h := range hits {
		out[i] = h.skill
	}
	return out
}
