package discovery

import (
	"net/url"
	"strings"
)

// Sort is the ordering requested from the post service.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortPopular Sort = "popular"
)

// Sorts lists the sort orders in cycle order.
var Sorts = []Sort{SortNewest, SortOldest, SortPopular}

// ParseSort returns the Sort named by s. Unknown values yield SortNewest, false.
func ParseSort(s string) (Sort, bool) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortNewest:
		return SortNewest, true
	case SortOldest:
		return SortOldest, true
	case SortPopular:
		return SortPopular, true
	default:
		return SortNewest, false
	}
}

// Next returns the following sort order, wrapping around.
func (s Sort) Next() Sort {
	for i, v := range Sorts {
		if v == s {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return SortNewest
}

// Address-bar keys.
const (
	keyText     = "q"
	keyCategory = "cat"
	keyTag      = "tag"
	keySort     = "sort"
)

// Query is the user's current search, filter and sort intent.
type Query struct {
	Text     string
	Category Category
	Tag      string
	Sort     Sort
}

// DefaultQuery is the query of a page opened without a query string.
func DefaultQuery() Query {
	return Query{Category: CategoryAll, Sort: SortNewest}
}

// IsDefault reports whether every field holds its default value.
func (q Query) IsDefault() bool {
	return q == DefaultQuery()
}

// Normalize fills zero fields with defaults and restores the invariant that
// a selected tag is also the search text. Tags are searched as free text, so
// a query carrying a tag with different text cannot be reached from the UI
// and would not survive a reload.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Tag = strings.TrimSpace(q.Tag)
	q.Category, _ = ParseCategory(string(q.Category))
	q.Sort, _ = ParseSort(string(q.Sort))
	if q.Tag != "" {
		q.Text = q.Tag
	}
	return q
}

// Encode serializes q to an address-bar query string without the leading
// "?". Fields holding their default value are omitted, so the default query
// encodes to "". Keys are always written in the order q, cat, tag, sort.
func (q Query) Encode() string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+url.QueryEscape(value))
	}
	if q.Text != "" {
		add(keyText, q.Text)
	}
	if q.Category != "" && q.Category != CategoryAll {
		add(keyCategory, string(q.Category))
	}
	if q.Tag != "" {
		add(keyTag, q.Tag)
	}
	if q.Sort != "" && q.Sort != SortNewest {
		add(keySort, string(q.Sort))
	}
	return strings.Join(parts, "&")
}

// ParseQuery builds a Query from an address. raw may be a bare query string
// ("q=x&sort=oldest"), a query string with its leading "?", or a path or full
// URL carrying one. Malformed or unknown values fall back to defaults. A tag
// initializes both Tag and Text.
func ParseQuery(raw string) Query {
	q := DefaultQuery()
	values := parseValues(raw)

	q.Text = strings.TrimSpace(values.Get(keyText))
	if c, ok := ParseCategory(values.Get(keyCategory)); ok {
		q.Category = c
	}
	if s, ok := ParseSort(values.Get(keySort)); ok {
		q.Sort = s
	}
	if tag := strings.TrimSpace(values.Get(keyTag)); tag != "" {
		q.Tag = tag
		q.Text = tag
	}
	return q
}

// IncomingTag returns the tag carried by an address, or "".
func IncomingTag(raw string) string {
	return strings.TrimSpace(parseValues(raw).Get(keyTag))
}

func parseValues(raw string) url.Values {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	} else if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		// An address without a query part.
		return url.Values{}
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	// On error ParseQuery still returns every pair it could decode.
	values, _ := url.ParseQuery(raw)
	return values
}
