package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a 0-100 similarity between a and b based on the Levenshtein
// distance normalized by the longer string: 100 * (1 - dist/maxLen), rounded.
// Two empty strings are identical; one empty string scores 0.
func Ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 100
	}
	if la == 0 || lb == 0 {
		return 0
	}
	maxLen := max(la, lb)
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= maxLen {
		return 0
	}
	// round half up without floats
	return (200*(maxLen-dist) + maxLen) / (2 * maxLen)
}

// TokenSortRatio compares the inputs after normalizing and sorting their tokens,
// so word order does not affect the score.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedJoin(tokenize(a)), sortedJoin(tokenize(b)))
}

// TokenSetRatio compares the shared tokens against each side's remainder. A
// query whose tokens are a subset of the target scores 100.
func TokenSetRatio(a, b string) int {
	setA := tokenSet(tokenize(a))
	setB := tokenSet(tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}

	base := sortedJoin(shared)
	withA := strings.TrimSpace(base + " " + sortedJoin(onlyA))
	withB := strings.TrimSpace(base + " " + sortedJoin(onlyB))

	best := Ratio(withA, withB)
	if base != "" {
		best = max(best, Ratio(base, withA), Ratio(base, withB))
	}
	return best
}

// NameSimilarity is the fuzzy-name metric: the better of the token sort ratio
// and a 95% weighted token set ratio. The weight keeps partial-word containment
// below a reordering of the full name.
func NameSimilarity(query, name string) int {
	sortScore := TokenSortRatio(query, name)
	setScore := (TokenSetRatio(query, name)*95 + 50) / 100
	return max(sortScore, setScore)
}

// CodeSimilarity compares short codes such as tickers or ISINs after removing
// punctuation and case.
func CodeSimilarity(a, b string) int {
	ca, cb := compactCode(a), compactCode(b)
	if ca == "" || cb == "" {
		return 0
	}
	return Ratio(ca, cb)
}

// normalizeText lower-cases s and replaces anything that is not a letter or a
// digit with a single space.
func normalizeText(s string) string {
	return strings.Join(tokenize(s), " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// foldSpaces trims and collapses runs of whitespace, keeping punctuation.
func foldSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func compactCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func sortedJoin(tokens []string) string {
	out := append([]string(nil), tokens...)
	sort.Strings(out)
	return strings.Join(out, " ")
}
