// Package domain defines core catalog types and interfaces.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Number is a JSON number that tolerates malformed input. Anything other than
// a JSON number decodes as an invalid Number instead of failing the record.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf returns a valid Number holding v.
func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil || string(b) == "null" {
		*n = Number{}
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Rating is the aggregate customer rating of a product.
type Rating struct {
	Rate  Number `json:"rate"`
	Count int    `json:"count"`
}

// Product is a catalog record as delivered by the remote catalog.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Price       Number `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
	Rating      Rating `json:"rating"`
}

// Valid reports whether the product can take part in derived views.
// Malformed records are kept in the raw list but never shown.
func (p Product) Valid() bool {
	return p.Title != "" && p.Category != "" && p.Price.Valid && p.Rating.Rate.Valid
}

// ProductDraft is the user-supplied input for creating a product.
type ProductDraft struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0,finite"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
}

// Normalize returns a copy of the draft with text fields trimmed.
func (d ProductDraft) Normalize() ProductDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	return d
}

// SortBy selects the ordering of the visible product list.
type SortBy string

const (
	SortByName      SortBy = "name"
	SortByPriceLow  SortBy = "price-low"
	SortByPriceHigh SortBy = "price-high"
	SortByRating    SortBy = "rating"
)

// SortOptions lists every accepted SortBy value.
func SortOptions() []SortBy {
	return []SortBy{SortByName, SortByPriceLow, SortByPriceHigh, SortByRating}
}

// ParseSortBy converts user input into a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	for _, o := range SortOptions() {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q (want one of name, price-low, price-high, rating)", s)
}

// Filters is the query configuration applied to the raw product list.
type Filters struct {
	SearchTerm string   `json:"searchTerm"`
	Category   string   `json:"category"`
	MinPrice   *float64 `json:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice"`
	SortBy     SortBy   `json:"sortBy"`
}

// DefaultFilters returns the filter configuration of a fresh session.
func DefaultFilters() Filters {
	return Filters{SortBy: SortByName}
}

// Equal reports whether both filter sets select the same products in the same order.
func (f Filters) Equal(o Filters) bool {
	return f.SearchTerm == o.SearchTerm &&
		f.Category == o.Category &&
		f.SortBy == o.SortBy &&
		boundEqual(f.MinPrice, o.MinPrice) &&
		boundEqual(f.MaxPrice, o.MaxPrice)
}

// Active reports whether any field differs from DefaultFilters.
func (f Filters) Active() bool {
	return !f.Equal(DefaultFilters())
}

func boundEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DefaultItemsPerPage is the page size used when none is configured.
const DefaultItemsPerPage = 15

// Pagination selects the window of the visible list.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// DefaultPagination returns the first page with the default page size.
func DefaultPagination() Pagination {
	return Pagination{CurrentPage: 1, ItemsPerPage: DefaultItemsPerPage}
}

// CatalogGateway is the remote catalog service seen from the client.
type CatalogGateway interface {
	FetchAll(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, draft ProductDraft) (Product, error)
}
