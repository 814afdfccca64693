package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// TokenSetRatio scores a and b in [0,100] on their distinct token sets.
// Tokens are lowercased alphanumeric runs, so word order, punctuation and
// repeated words do not matter. When one token set contains the other the
// score is 100; otherwise the best of three normalized edit-distance ratios
// over the shared and leftover tokens is returned.
func TokenSetRatio(a, b string) float64 {
	return tokenSetRatio(tokenize(a), tokenize(b))
}

func tokenSetRatio(ta, tb []string) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	sect, diffAB, diffBA := splitSets(ta, tb)
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sectStr := strings.Join(sect, " ")
	abStr := strings.Join(diffAB, " ")
	baStr := strings.Join(diffBA, " ")

	best := ratio(abStr, baStr)
	if sectStr == "" {
		return best
	}
	if r := ratio(sectStr, sectStr+" "+abStr); r > best {
		best = r
	}
	if r := ratio(sectStr, sectStr+" "+baStr); r > best {
		best = r
	}
	return best
}

// ratio is 100 * (1 - levenshtein / longer length), measured in runes.
func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}

// tokenize lowercases s, treats every non-alphanumeric rune as a separator
// and returns the distinct tokens sorted.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	out := fields[:1]
	for _, f := range fields[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}

// splitSets merges two sorted distinct token lists.
func splitSets(a, b []string) (sect, onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			sect = append(sect, a[i])
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return sect, onlyA, onlyB
}
