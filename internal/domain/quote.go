// Package domain contains core business entities and rules.
package domain

import (
	"strings"
)

// AllCategories is the pseudo-category that selects every quote.
const AllCategories = "all"

// DefaultCategory is used for remote records that carry no usable category.
const DefaultCategory = "general"

// Quote is a single quotation with the category it is filed under.
// Quotes have no identity of their own; two quotes are "the same" when
// their Key values match.
type Quote struct {
	// Text is the quotation itself.
	Text string `json:"text"`

	// Category is a free-form label such as "life" or "work".
	Category string `json:"category"`
}

// NewQuote trims both fields and rejects empty values.
func NewQuote(text, category string) (Quote, error) {
	q := Quote{
		Text:     strings.TrimSpace(text),
		Category: strings.TrimSpace(category),
	}

	if err := q.Validate(); err != nil {
		return Quote{}, err
	}

	return q, nil
}

// Validate reports whether both fields are non-empty after trimming.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}

	return nil
}

// Key returns the case-insensitive de-duplication key "text|category".
func (q Quote) Key() string {
	return strings.ToLower(q.Text) + "|" + strings.ToLower(q.Category)
}

// SeedQuotes returns the collection a fresh store starts with.
func SeedQuotes() []Quote {
	return []Quote{
		{Text: "The only way to do great work is to love what you do.", Category: "work"},
		{Text: "Life is what happens when you're busy making other plans.", Category: "life"},
		{Text: "In the middle of difficulty lies opportunity.", Category: "inspiration"},
		{Text: "Simplicity is the ultimate sophistication.", Category: "design"},
		{Text: "The best way to predict the future is to invent it.", Category: "technology"},
	}
}

// Merge combines a local and a remote quote set into one de-duplicated set.
//
// Remote records come first, in remote order, and win every key collision.
// Local records whose key is not present in the remote set follow in local
// order. Within either side the first record seen for a key is kept.
func Merge(local, remote []Quote) []Quote {
	seen := make(map[string]struct{}, len(local)+len(remote))
	merged := make([]Quote, 0, len(local)+len(remote))

	for _, side := range [][]Quote{remote, local} {
		for _, q := range side {
			key := q.Key()
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
			merged = append(merged, q)
		}
	}

	return merged
}

// CountAdded returns how many quotes in merged have a key absent from base.
func CountAdded(base, merged []Quote) int {
	known := make(map[string]struct{}, len(base))
	for _, q := range base {
		known[q.Key()] = struct{}{}
	}

	added := 0

	for _, q := range merged {
		if _, ok := known[q.Key()]; !ok {
			added++
		}
	}

	return added
}

// Categories returns the distinct categories in first-seen order.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}

	return categories
}

// FilterByCategory returns the quotes filed under category.
// An empty category or AllCategories returns a copy of every quote.
// Matching is exact and case-sensitive.
func FilterByCategory(quotes []Quote, category string) []Quote {
	if category == "" || category == AllCategories {
		return append([]Quote(nil), quotes...)
	}

	filtered := make([]Quote, 0)

	for _, q := range quotes {
		if q.Category == category {
			filtered = append(filtered, q)
		}
	}

	return filtered
}
