package dto

import (
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// NewQuoteResponses converts a slice of domain quotes.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = NewQuoteResponse(q)
	}

	return out
}

// ListQuotesRequest is the query for GET /api/v1/quotes.
type ListQuotesRequest struct {
	PaginationRequest

	// Category filters the list. Empty uses the persisted filter.
	Category string `form:"category"`
}

// AddQuoteRequest is the body for POST /api/v1/quotes.
type AddQuoteRequest struct {
	Text     string `json:"text" validate:"notempty"`
	Category string `json:"category" validate:"notempty"`
}

// SetFilterRequest is the body for PUT /api/v1/filter.
type SetFilterRequest struct {
	Category string `json:"category" validate:"notempty"`
}

// FilterResponse reports the selected category.
type FilterResponse struct {
	Category string `json:"category"`
}

// CategoriesResponse lists the filter options, "all" first.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// NewCategoriesResponse prepends the "all" pseudo-category.
func NewCategoriesResponse(categories []string) CategoriesResponse {
	return CategoriesResponse{
		Categories: append([]string{domain.AllCategories}, categories...),
	}
}

// ImportResponse reports an import outcome.
type ImportResponse struct {
	Imported int `json:"imported"`
	Rejected int `json:"rejected"`
}

// NewImportResponse converts an app.ImportResult.
func NewImportResponse(r app.ImportResult) ImportResponse {
	return ImportResponse{Imported: r.Imported, Rejected: r.Rejected}
}
