package filter

import (
	"reflect"
	"strings"
	"testing"

	"cryptohub/internal/provider"
)

func sampleQuotes() []provider.Quote {
	return []provider.Quote{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: 65000, Trend: []float64{1, 2, 3}},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Price: 3000, Trend: []float64{4, 5, 6}},
	}
}

func ids(qs []provider.Quote) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestFilter_MatchesSymbolSubstring(t *testing.T) {
	got := Filter(sampleQuotes(), "eth")
	if len(got) != 1 || got[0].Name != "Ethereum" {
		t.Fatalf("want [Ethereum], got %+v", got)
	}
}

func TestFilter_CaseInsensitiveName(t *testing.T) {
	got := Filter(sampleQuotes(), "BIT")
	if len(got) != 1 || got[0].Name != "Bitcoin" {
		t.Fatalf("want [Bitcoin], got %+v", got)
	}
}

func TestFilter_EmptyTermReturnsAllInOrder(t *testing.T) {
	in := sampleQuotes()
	got := Filter(in, "")
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("want input unchanged, got %+v", got)
	}
	// result must be a fresh slice
	got[0].Name = "changed"
	if in[0].Name != "Bitcoin" {
		t.Fatalf("empty-term result aliases the input")
	}
}

func TestFilter_NoMatchAndNilInput(t *testing.T) {
	if got := Filter(sampleQuotes(), "doge"); len(got) != 0 {
		t.Fatalf("want no matches, got %+v", got)
	}
	if got := Filter(nil, "btc"); got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	in := []provider.Quote{
		{ID: "a", Name: "Alpha Coin", Symbol: "alp"},
		{ID: "b", Name: "Beta", Symbol: "coin"},
		{ID: "c", Name: "Gamma", Symbol: "gam"},
		{ID: "d", Name: "COINS", Symbol: "dd"},
	}
	got := ids(Filter(in, "Coin"))
	want := []string{"a", "b", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestFilter_Properties(t *testing.T) {
	quotes := []provider.Quote{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"},
		{ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "bch"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth"},
		{ID: "ethereum-classic", Name: "Ethereum Classic", Symbol: "etc"},
		{ID: "tether", Name: "Tether", Symbol: "usdt"},
		{ID: "usd-coin", Name: "USDC", Symbol: "usdc"},
		{ID: "dogecoin", Name: "Dogecoin", Symbol: "doge"},
		{ID: "wrapped-bitcoin", Name: "Wrapped Bitcoin", Symbol: "wbtc"},
	}
	terms := []string{"b", "BTC", "coin", "eth", "ET", "usd", "c", "x", "Classic", "e", " "}

	for _, term := range terms {
		got := Filter(quotes, term)

		// every result matches
		for _, q := range got {
			lt := strings.ToLower(term)
			if !strings.Contains(strings.ToLower(q.Name), lt) && !strings.Contains(strings.ToLower(q.Symbol), lt) {
				t.Fatalf("term %q: %+v does not match", term, q)
			}
			if !Matches(q, term) {
				t.Fatalf("term %q: Matches disagrees with Filter for %+v", term, q)
			}
		}

		// every matching input is kept, in order
		var want []string
		for _, q := range quotes {
			if Matches(q, term) {
				want = append(want, q.ID)
			}
		}
		if g := ids(got); len(want) != len(g) || (len(want) > 0 && !reflect.DeepEqual(want, g)) {
			t.Fatalf("term %q: want %v, got %v", term, want, g)
		}

		// idempotent
		if again := Filter(got, term); !reflect.DeepEqual(again, got) {
			t.Fatalf("term %q: not idempotent: %v vs %v", term, ids(again), ids(got))
		}
	}
}

func TestMatches_EmptyTerm(t *testing.T) {
	if !Matches(provider.Quote{}, "") {
		t.Fatalf("empty term must match")
	}
}
