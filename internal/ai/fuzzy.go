package ai

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Similarity scores are on a 0..100 scale.

// ratio is the normalized indel similarity of two strings
func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la+lb == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(la+lb)
}

// partialRatio scores the shorter string against every alignment with the longer one
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	m, n := len(short), len(long)
	if m == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for end := 1; end < n+m; end++ {
		start := end - m
		if start < 0 {
			start = 0
		}
		stop := end
		if stop > n {
			stop = n
		}
		if score := ratio(s, string(long[start:stop])); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

func tokenSets(a, b string) (common, onlyA, onlyB []string) {
	inA := make(map[string]bool)
	for _, t := range strings.Fields(a) {
		inA[t] = true
	}
	inB := make(map[string]bool)
	for _, t := range strings.Fields(b) {
		inB[t] = true
	}
	for t := range inA {
		if inB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range inB {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return common, onlyA, onlyB
}

func tokenSortRatio(a, b string) float64 {
	return ratio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

func tokenSetRatio(a, b string) float64 {
	common, onlyA, onlyB := tokenSets(a, b)
	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	sect := strings.Join(common, " ")
	diffA := strings.Join(onlyA, " ")
	diffB := strings.Join(onlyB, " ")
	combinedA, combinedB := diffA, diffB
	if sect != "" {
		combinedA = sect + " " + diffA
		combinedB = sect + " " + diffB
	}
	best := ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, ratio(sect, combinedA), ratio(sect, combinedB))
	}
	return best
}

func partialTokenRatio(a, b string) float64 {
	common, _, _ := tokenSets(a, b)
	if len(common) > 0 {
		return 100
	}
	return partialRatio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

// similarity is a weighted blend of the plain, partial and token based ratios.
// Strings of similar length are compared whole; otherwise partial alignment dominates.
func similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	score := ratio(a, b)
	if lenRatio < 1.5 {
		return max(score, max(tokenSortRatio(a, b), tokenSetRatio(a, b))*0.95)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	score = max(score, partialRatio(a, b)*partialScale)
	return max(score, partialTokenRatio(a, b)*0.95*partialScale)
}

// bestMatch returns the index and score of the choice most similar to query.
// ok is false when there are no choices or the best score is below cutoff.
func bestMatch(query string, choices []string, cutoff float64) (idx int, score float64, ok bool) {
	idx = -1
	for i, choice := range choices {
		if s := similarity(query, choice); s > score || idx < 0 {
			idx, score = i, s
		}
	}
	if idx < 0 || score < cutoff {
		return -1, 0, false
	}
	return idx, score, true
}
