package search

import (
	"sort"
	"strings"
)

// Normalize prepares a raw query for matching. An empty result means the
// caller should fall back to plain listing.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Tiered scores value against a normalized query with distinct weights for
// exact, prefix, and substring matches. Matching is case-insensitive.
func Tiered(value, query string, exact, prefix, contains int) int {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == query:
		return exact
	case strings.HasPrefix(v, query):
		return prefix
	case strings.Contains(v, query):
		return contains
	}
	return 0
}

// Contains awards weight when value contains the normalized query.
func Contains(value, query string, weight int) int {
	if strings.Contains(strings.ToLower(value), query) {
		return weight
	}
	return 0
}

// Scored pairs an item with its relevance score and tiebreak keys.
type Scored[T any] struct {
	Item  T
	Score int
	// Key is the item's primary display field, used to break score ties.
	Key string
	// ID breaks ties between items with equal Key, keeping the order stable
	// across requests.
	ID string
}

// Rank orders items by score descending, then Key ascending
// (case-insensitive), then ID ascending.
func Rank[T any](items []Scored[T]) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		ki, kj := strings.ToLower(items[i].Key), strings.ToLower(items[j].Key)
		if ki != kj {
			return ki < kj
		}
		return items[i].ID < items[j].ID
	})
}

// Items unwraps a ranked slice back into plain items.
func Items[T any](scored []Scored[T]) []T {
	out := make([]T, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// Pages returns the page count for a total at the given page size.
func Pages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Page slices out the 1-based page of the given size. Pages past the end are
// empty.
func Page[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
