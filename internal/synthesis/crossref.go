package synthesis

import (
	"strings"

	"github.com/codelens/driftscan/internal/producer"
)

// CrossRefResult partitions documented items against implemented ones.
// PartiallyImplemented is reserved for a future refinement; the baseline
// matcher never populates it.
type CrossRefResult struct {
	Aligned                  []string
	DocumentedNotImplemented []string
	ImplementedNotDocumented []string
	PartiallyImplemented     []string
}

// CrossReference fuzzy-matches documented feature labels against
// implemented feature descriptors. The matcher is intentionally permissive:
// a false alignment is cheaper than a missed one.
func CrossReference(documented []string, implemented []producer.Feature) CrossRefResult {
	var result CrossRefResult

	matchedImpl := make([]bool, len(implemented))
	for _, doc := range documented {
		matched := false
		for i, impl := range implemented {
			if Match(doc, impl.Name) {
				matched = true
				matchedImpl[i] = true
			}
		}
		if matched {
			result.Aligned = append(result.Aligned, doc)
		} else {
			result.DocumentedNotImplemented = append(result.DocumentedNotImplemented, doc)
		}
	}

	for i, impl := range implemented {
		if !matchedImpl[i] {
			result.ImplementedNotDocumented = append(result.ImplementedNotDocumented, impl.Name)
		}
	}

	return result
}

// Match reports whether two free-text labels refer to the same thing.
// Labels match when one normalized form contains the other, when their edit
// distance is under 3, or when any pair of stemmed word tokens lines up.
// The token pass catches inflection pairs like "caching layer" / "cache"
// that whole-label containment misses.
func Match(a, b string) bool {
	na, nb := normalizeLabel(a), normalizeLabel(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	if editDistance(na, nb) < 3 {
		return true
	}

	for _, ta := range tokenize(a) {
		for _, tb := range tokenize(b) {
			if tokensMatch(ta, tb) {
				return true
			}
		}
	}
	return false
}

// normalizeLabel lowercases, drops whitespace/hyphens/underscores, and
// strips a single trailing pluralizing "s".
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '-', '_':
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "s") {
		out = out[:len(out)-1]
	}
	return out
}

// tokenize splits a label into stemmed lowercase word tokens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_' || r == '/'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := stem(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// stem strips one common inflection suffix. Deliberately crude.
func stem(w string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(w, suffix) && len(w) > len(suffix)+2 {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

// tokensMatch compares two stemmed tokens. Short tokens only match
// exactly; containment needs at least four characters on the shorter side
// to keep noise words from aligning everything.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	if shorter >= 4 && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	return shorter >= 4 && editDistance(a, b) < 2
}

// editDistance is the Levenshtein distance between two strings, two-row DP.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
