// Package normalize provides pure text canonicalization and literal
// extraction helpers shared by the semantic dictionary and the planner.
// All functions are stateless; none of them is used for rendering values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	quarterPattern = regexp.MustCompile(`(20\d{2})\s*[Qq]\s*([1-4])`)
	yearPattern    = regexp.MustCompile(`\b(20\d{2})\b`)
	numberPattern  = regexp.MustCompile(`\b(\d+)\b`)
	groupByPattern = regexp.MustCompile(`\b(?:by|per)\s+([^,.?!;]+)`)
)

// unit suffixes stripped for comparison purposes only, never for display.
var unitSuffixes = []string{"$mm", "_pct", "%"}

// Text lowercases the input and strips unit suffixes, underscores and
// whitespace so that field keys, synonyms and question fragments compare
// on equal footing. "Margin_$mm" and "margin $MM" both normalize to
// "margin".
func Text(s string) string {
	out := strings.ToLower(s)
	for _, suffix := range unitSuffixes {
		out = strings.ReplaceAll(out, suffix, "")
	}
	out = strings.ReplaceAll(out, "_", "")
	return strings.Join(strings.Fields(out), "")
}

// ExtractQuarter finds the first quarter literal in the form
// "YYYY[ ]Q[ ]N" and returns it canonicalized as "YYYYQN". The second
// return is false when no quarter literal is present.
func ExtractQuarter(s string) (string, bool) {
	m := quarterPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + "Q" + m[2], true
}

// ExtractYear finds the first 4-digit token starting with "20".
func ExtractYear(s string) (string, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractNumber finds the first integer token. Callers decide whether the
// token is meaningful in context (a "top N" count versus a year literal).
func ExtractNumber(s string) (int, bool) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractGroupBy captures the phrase following "by " or "per " up to the
// next punctuation mark, trimmed of surrounding whitespace.
func ExtractGroupBy(s string) (string, bool) {
	m := groupByPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	phrase := strings.TrimSpace(m[1])
	if phrase == "" {
		return "", false
	}
	return phrase, true
}

// ContainsAny reports whether the normalized text contains any of the
// normalized keywords as a substring.
func ContainsAny(s string, keywords []string) bool {
	norm := Text(s)
	for _, kw := range keywords {
		k := Text(kw)
		if k != "" && strings.Contains(norm, k) {
			return true
		}
	}
	return false
}
