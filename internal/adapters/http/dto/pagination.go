package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrCursorMismatch is returned when a cursor is replayed against a
	// different category than the one it was issued for.
	ErrCursorMismatch = errors.New("cursor does not match category")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// CursorData is the position encoded in a cursor. Quotes have no identity,
// so the position is an offset into the filtered list.
type CursorData struct {
	Category string `json:"c"`
	Offset   int    `json:"o"`
}

// EncodeCursor encodes cursor data to a URL-safe base64 string.
func EncodeCursor(data CursorData) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor decodes a cursor string. An empty string is the first page.
func DecodeCursor(encoded string) (CursorData, error) {
	if encoded == "" {
		return CursorData{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return CursorData{}, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 {
		return CursorData{}, ErrInvalidCursor
	}

	return data, nil
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// Total is the size of the full filtered list.
	Total int `json:"total"`

	// NextCursor is the cursor to use for the next page.
	// Empty if there are no more items.
	NextCursor string `json:"nextCursor,omitempty"`

	// HasMore indicates whether there are more items after this page.
	HasMore bool `json:"hasMore"`
}

// Paginate slices all according to req. category is bound into the cursor
// so a cursor cannot be replayed against a different filter.
func Paginate[T any](all []T, category string, req PaginationRequest) (*PaginatedResponse[T], error) {
	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	if req.Cursor != "" && cursor.Category != category {
		return nil, ErrCursorMismatch
	}

	limit := req.GetLimit()
	start := min(cursor.Offset, len(all))
	end := min(start+limit, len(all))

	items := make([]T, end-start)
	copy(items, all[start:end])

	resp := &PaginatedResponse[T]{
		Items:   items,
		Total:   len(all),
		HasMore: end < len(all),
	}

	if resp.HasMore {
		resp.NextCursor = EncodeCursor(CursorData{Category: category, Offset: end})
	}

	return resp, nil
}
