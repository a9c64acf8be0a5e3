package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"catalogdash/domain"
	"catalogdash/gateway"
	"catalogdash/pipeline"
	"catalogdash/store"
)

// hintError carries a follow-up suggestion printed after the error itself.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	var he *hintError
	if errors.As(err, &he) {
		fmt.Fprintln(w, he.hint)
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func renderPage(w io.Writer, page pipeline.Page, filtered bool) {
	noun := "products"
	if page.TotalCount == 1 {
		noun = "product"
	}
	fmt.Fprintf(w, "Showing %d %s", page.TotalCount, noun)
	if page.TotalPages > 1 {
		fmt.Fprintf(w, " (Page %d of %d)", page.Page, page.TotalPages)
	}
	fmt.Fprintln(w)

	if page.TotalCount == 0 {
		fmt.Fprintln(w, "No products found matching your filters.")
		if filtered {
			fmt.Fprintln(w, "Run `clear` to reset filters.")
		}
		return
	}

	for _, p := range page.Items {
		fmt.Fprintf(w, "%d | %s | %s | %s (%d) | %s\n",
			p.ID, p.Title, price(p.Price), rate(p.Rating.Rate), p.Rating.Count, p.Category)
	}

	if page.HasPrev || page.HasNext {
		var nav []string
		if page.HasPrev {
			nav = append(nav, fmt.Sprintf("--page %d for previous", page.Page-1))
		}
		if page.HasNext {
			nav = append(nav, fmt.Sprintf("--page %d for next", page.Page+1))
		}
		fmt.Fprintln(w, strings.Join(nav, ", "))
	}
}

func renderProduct(w io.Writer, p domain.Product) {
	fmt.Fprintln(w, p.Title)
	fmt.Fprintf(w, "Category: %s\n", p.Category)
	fmt.Fprintf(w, "Price:    %s\n", price(p.Price))
	reviews := "customer reviews"
	if p.Rating.Count == 1 {
		reviews = "customer review"
	}
	fmt.Fprintf(w, "Rating:   %s (%d %s)\n", rate(p.Rating.Rate), p.Rating.Count, reviews)
	if p.Image != "" {
		fmt.Fprintf(w, "Image:    %s\n", p.Image)
	}
	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}
}

func renderFieldErrors(w io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}

func renderStatus(w io.Writer, st store.State, b *gateway.Breaker) {
	fmt.Fprintf(w, "status:    %s\n", st.Status)
	if st.Error != "" {
		fmt.Fprintf(w, "error:     %s\n", st.Error)
	}
	fmt.Fprintf(w, "products:  %d\n", len(st.Products))
	fmt.Fprintf(w, "revision:  %d\n", st.Revision)

	f := st.Filters
	fmt.Fprintf(w, "search:    %q\n", f.SearchTerm)
	fmt.Fprintf(w, "category:  %q\n", f.Category)
	fmt.Fprintf(w, "price:     %s - %s\n", priceBound(f.MinPrice), priceBound(f.MaxPrice))
	fmt.Fprintf(w, "sort:      %s\n", f.SortBy)
	fmt.Fprintf(w, "page:      %d (%d per page)\n", st.Pagination.CurrentPage, st.Pagination.ItemsPerPage)
	if b != nil {
		fmt.Fprintf(w, "breaker:   %s\n", b.State())
	}
}

func price(n domain.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", n.Value)
}

func rate(n domain.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", n.Value)
}

func priceBound(v *float64) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("$%.2f", *v)
}
