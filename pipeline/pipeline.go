// Package pipeline derives the visible product list from the raw catalog and
// the current filter, sort and pagination configuration.
//
// Every function is pure: inputs are never modified and equal inputs give
// equal outputs. Results may share backing arrays with each other but never
// with the input slice.
package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"catalogdash/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page is one window of the filtered and sorted product list.
type Page struct {
	Items      []domain.Product `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
	HasPrev    bool             `json:"has_prev"`
}

// Bounds is the price range covered by a product set.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid keeps the products that can take part in derived views, preserving order.
func Valid(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// Filter applies the search term, category and price bounds of f.
// Sort order in f is ignored.
func Filter(products []domain.Product, f domain.Filters) []domain.Product {
	term := strings.ToLower(f.SearchTerm)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price.Value < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price.Value > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort returns a stably sorted copy of products. Unknown orderings sort by name.
func Sort(products []domain.Product, by domain.SortBy) []domain.Product {
	out := slices.Clone(products)

	switch by {
	case domain.SortByPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(a.Price.Value, b.Price.Value)
		})
	case domain.SortByPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.Price.Value, a.Price.Value)
		})
	case domain.SortByRating:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating.Rate.Value, a.Rating.Rate.Value)
		})
	default:
		// collators keep internal buffers, so each call gets its own
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
	return out
}

// Query runs validation, filtering and sorting: the full visible list before paging.
func Query(products []domain.Product, f domain.Filters) []domain.Product {
	return Sort(Filter(Valid(products), f), f.SortBy)
}

// Paginate returns the items on p.CurrentPage. Pages outside the list are empty.
func Paginate(items []domain.Product, p domain.Pagination) []domain.Product {
	if p.CurrentPage < 1 || p.ItemsPerPage < 1 {
		return []domain.Product{}
	}
	start := (p.CurrentPage - 1) * p.ItemsPerPage
	if start >= len(items) {
		return []domain.Product{}
	}
	end := min(start+p.ItemsPerPage, len(items))
	return items[start:end:end]
}

// TotalPages returns ceil(count/perPage), or 0 when there is nothing to page.
func TotalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	totalPages := count / perPage
	if count%perPage > 0 {
		totalPages++
	}
	return totalPages
}

// Derive computes the visible page for the given state.
func Derive(products []domain.Product, f domain.Filters, p domain.Pagination) Page {
	return PageOf(Query(products, f), p)
}

// PageOf windows an already filtered and sorted list.
func PageOf(results []domain.Product, p domain.Pagination) Page {
	totalPages := TotalPages(len(results), p.ItemsPerPage)
	return Page{
		Items:      Paginate(results, p),
		TotalCount: len(results),
		Page:       p.CurrentPage,
		PerPage:    p.ItemsPerPage,
		TotalPages: totalPages,
		HasNext:    p.CurrentPage < totalPages,
		HasPrev:    p.CurrentPage > 1,
	}
}

// Categories returns the distinct categories of the valid products, sorted.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range Valid(products) {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// PriceBounds returns the lowest and highest price among the valid products,
// or {0, 0} when there are none.
func PriceBounds(products []domain.Product) Bounds {
	valid := Valid(products)
	if len(valid) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: valid[0].Price.Value, Max: valid[0].Price.Value}
	for _, p := range valid[1:] {
		b.Min = min(b.Min, p.Price.Value)
		b.Max = max(b.Max, p.Price.Value)
	}
	return b
}
