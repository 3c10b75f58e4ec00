package filter

import (
	"strings"

	"cryptohub/internal/provider"
)

// Matches reports whether q's name or symbol contains term, ignoring case.
// An empty term matches every quote.
func Matches(q provider.Quote, term string) bool {
	if term == "" {
		return true
	}
	return matchesLower(q, strings.ToLower(term))
}

func matchesLower(q provider.Quote, t string) bool {
	return strings.Contains(strings.ToLower(q.Name), t) ||
		strings.Contains(strings.ToLower(q.Symbol), t)
}

// Filter returns, in input order, the quotes whose name or symbol contains
// term case-insensitively. An empty term returns every quote. The result
// never aliases the input slice.
func Filter(quotes []provider.Quote, term string) []provider.Quote {
	out := make([]provider.Quote, 0, len(quotes))
	if term == "" {
		return append(out, quotes...)
	}
	t := strings.ToLower(term)
	for _, q := range quotes {
		if matchesLower(q, t) {
			out = append(out, q)
		}
	}
	return out
}
