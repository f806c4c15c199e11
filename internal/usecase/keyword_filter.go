package usecase

import (
	"regexp"
	"strings"
)

// dosageTerms are units a prescription detail line mentions
var dosageTerms = []string{
	"mg", "microgram", "g", "gram", "ml", "cc", "unit", "liter", "ounce", "tbsp", "tsp", "drop",
	"IU", "international unit", "mcg", "nanogram", "picogram", "dosis", "caps", "capsule",
	"dose", "milligram", "mEq", "units",
}

// drugTypeTerms are administrable drug forms
var drugTypeTerms = []string{
	"tablet", "capsule", "syrup", "liquid", "ointment", "cream", "injection", "solution",
	"suspension", "gel", "patch", "spray", "drop", "lozenge", "powder", "emulsion", "sublingual",
	"suppository", "vaccine", "dressing", "inhaler", "gargle", "elixir", "tab", "sachet",
	"oral", "topical", "intraocular", "intrauterine",
}

// Package-level compiled patterns; membership is case-insensitive
// substring matching, so "500mg" hits the "mg" term.
var (
	dosagePattern   = compileKeywordPattern(dosageTerms)
	drugTypePattern = compileKeywordPattern(drugTypeTerms)
)

// compileKeywordPattern builds a case-insensitive alternation over the vocabulary
func compileKeywordPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// FilterPrescriptionLines keeps the lines that mention at least one
// dosage term and at least one drug-form term. The result preserves
// input order and may be empty; callers treat an empty result as
// "nothing extracted", not an error.
func FilterPrescriptionLines(lines []string) []string {
	var results []string
	for _, line := range lines {
		if dosagePattern.MatchString(line) && drugTypePattern.MatchString(line) {
			results = append(results, line)
		}
	}
	return results
}
