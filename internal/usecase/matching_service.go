package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// defaultConfidenceThreshold is the strict cutoff above which a fuzzy
// match is accepted as correct.
const defaultConfidenceThreshold = 70

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	ConfidenceThreshold int
	EnableDebugLogging  bool
}

// MatchingService scores free-text queries against catalog product
// names. Scoring is a pure function of its inputs: no shared state, and
// ties between equally scored candidates always resolve to the first
// one in listing order.
type MatchingService struct {
	confidenceThreshold int
	enableDebugLogging  bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}

	return &MatchingService{
		confidenceThreshold: threshold,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// Threshold returns the configured confidence cutoff
func (s *MatchingService) Threshold() int {
	return s.confidenceThreshold
}

// Accepts reports whether a score clears the threshold. Strictly
// greater: a score equal to the threshold is rejected.
func (s *MatchingService) Accepts(score int) bool {
	return score > s.confidenceThreshold
}

// BestMatch returns the highest-scoring candidate for the query and its
// score on a 0-100 scale. An empty or whitespace-only query, or an
// empty candidate list, yields ("", 0). Candidates are visited in input
// order and only a strictly higher score replaces the current best, so
// equal scores keep the earliest candidate.
func (s *MatchingService) BestMatch(query string, candidates []string) (string, int) {
	if len(candidates) == 0 {
		return "", 0
	}
	if normalizeTokens(query) == nil {
		return "", 0
	}

	bestName := ""
	bestScore := -1

	for _, candidate := range candidates {
		score := similarityScore(query, candidate)
		if s.enableDebugLogging {
			log.Printf("[MATCH] Candidate: %q | Score: %d", candidate, score)
		}
		if score > bestScore {
			bestScore = score
			bestName = candidate
		}
	}

	if bestScore < 0 {
		return "", 0
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] Best match: %q (score: %d)", bestName, bestScore)
	}

	return bestName, bestScore
}

// similarityScore combines token-sort and token-set ratios, keeping the
// higher of the two. Token-sort handles reordered words; token-set
// handles the common packaging case where the catalog name is a subset
// of the noisy OCR text ("Panadol" inside "PANADOL 500MG TABLET").
func similarityScore(a, b string) int {
	sortScore := tokenSortRatio(a, b)
	setScore := tokenSetRatio(a, b)
	if setScore > sortScore {
		return setScore
	}
	return sortScore
}

// tokenSortRatio compares the two strings with tokens lowercased,
// stripped of punctuation, and sorted alphabetically.
func tokenSortRatio(a, b string) int {
	sortedA := strings.Join(normalizeTokens(a), " ")
	sortedB := strings.Join(normalizeTokens(b), " ")
	return levenshteinRatio(sortedA, sortedB)
}

// tokenSetRatio compares intersection and difference token groups,
// returning the best pairwise ratio. A full subset scores 100.
func tokenSetRatio(a, b string) int {
	tokensA := normalizeTokens(a)
	tokensB := normalizeTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	var intersection, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := levenshteinRatio(base, combinedA)
	if r := levenshteinRatio(base, combinedB); r > best {
		best = r
	}
	if r := levenshteinRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

// normalizeTokens lowercases, strips punctuation, and splits into
// whitespace-separated tokens. Returns nil for empty/whitespace input.
func normalizeTokens(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Fields(cleaned)
}

// levenshteinRatio scales edit distance to a 0-100 similarity score
func levenshteinRatio(s1, s2 string) int {
	if s1 == "" && s2 == "" {
		return 0
	}
	la := len([]rune(s1))
	lb := len([]rune(s2))
	total := la + lb
	if total == 0 {
		return 0
	}
	dist := levenshteinDistance(s1, s2)
	return ((total - dist) * 100) / total
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len([]rune(s2))
	}
	if len(s2) == 0 {
		return len([]rune(s1))
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	// Initialize first row
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	// Fill matrix
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
