package domain

import (
	"context"
	"encoding/json"
	"math"
	"testing"
)

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name        string
		draft       ProductDraft
		expectError bool
		errFields   map[string]string
	}{
		{
			name:  "valid draft",
			draft: ProductDraft{Title: "Lamp", Price: 12.5, Category: "home"},
		},
		{
			name:        "empty title",
			draft:       ProductDraft{Title: "", Price: 5, Category: "x"},
			expectError: true,
			errFields:   map[string]string{"title": "Title is required"},
		},
		{
			name:        "whitespace only title and category",
			draft:       ProductDraft{Title: "   ", Price: 5, Category: "\t"},
			expectError: true,
			errFields: map[string]string{
				"title":    "Title is required",
				"category": "Category is required",
			},
		},
		{
			name:        "zero price",
			draft:       ProductDraft{Title: "Pen", Price: 0, Category: "office"},
			expectError: true,
			errFields:   map[string]string{"price": "Price must be greater than 0"},
		},
		{
			name:        "negative price",
			draft:       ProductDraft{Title: "Pen", Price: -3, Category: "office"},
			expectError: true,
			errFields:   map[string]string{"price": "Price must be greater than 0"},
		},
		{
			name:        "infinite price",
			draft:       ProductDraft{Title: "Pen", Price: math.Inf(1), Category: "office"},
			expectError: true,
			errFields:   map[string]string{"price": "Price must be a finite number"},
		},
		{
			name:        "not a number price",
			draft:       ProductDraft{Title: "Pen", Price: math.NaN(), Category: "office"},
			expectError: true,
			errFields:   map[string]string{"price": "Price must be greater than 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDraft(tt.draft)

			if !tt.expectError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if len(ve.Fields) != len(tt.errFields) {
				t.Fatalf("expected fields %v, got %v", tt.errFields, ve.Fields)
			}
			for field, msg := range tt.errFields {
				if ve.Field(field) != msg {
					t.Fatalf("field %q: expected %q, got %q", field, msg, ve.Field(field))
				}
			}
		})
	}
}

func TestValidateDraft_Trims(t *testing.T) {
	d, err := ValidateDraft(ProductDraft{Title: "  Lamp ", Price: 3, Description: " warm ", Category: " home"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title != "Lamp" || d.Description != "warm" || d.Category != "home" {
		t.Fatalf("draft not trimmed: %+v", d)
	}
}

func TestProductValid(t *testing.T) {
	good := Product{ID: 1, Title: "Hat", Price: NumberOf(3), Category: "accessories", Rating: Rating{Rate: NumberOf(4)}}
	if !good.Valid() {
		t.Fatalf("expected product to be valid")
	}

	cases := map[string]func(p *Product){
		"missing title":    func(p *Product) { p.Title = "" },
		"missing category": func(p *Product) { p.Category = "" },
		"bad price":        func(p *Product) { p.Price = Number{} },
		"bad rating":       func(p *Product) { p.Rating.Rate = Number{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := good
			mutate(&p)
			if p.Valid() {
				t.Fatalf("expected product to be invalid")
			}
		})
	}
}

func TestProductDecode_LenientNumbers(t *testing.T) {
	raw := `{"id":7,"title":"Mug","price":"12.00","category":"kitchen","rating":{"rate":null,"count":3}}`
	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.ID != 7 || p.Title != "Mug" {
		t.Fatalf("fields not decoded: %+v", p)
	}
	if p.Price.Valid || p.Rating.Rate.Valid {
		t.Fatalf("expected non-numeric price and rate to be invalid")
	}
	if p.Rating.Count != 3 {
		t.Fatalf("expected count 3, got %d", p.Rating.Count)
	}

	b, err := json.Marshal(p.Price)
	if err != nil || string(b) != "null" {
		t.Fatalf("expected invalid number to encode as null, got %s (%v)", b, err)
	}
}

func TestParseSortBy(t *testing.T) {
	for _, o := range SortOptions() {
		got, err := ParseSortBy(string(o))
		if err != nil || got != o {
			t.Fatalf("ParseSortBy(%q) = %q, %v", o, got, err)
		}
	}
	if _, err := ParseSortBy("cheapest"); err == nil {
		t.Fatalf("expected error for unknown sort option")
	}
}

func TestFiltersEqualAndActive(t *testing.T) {
	ten, alsoTen := 10.0, 10.0

	a := Filters{SearchTerm: "x", MinPrice: &ten, SortBy: SortByName}
	b := Filters{SearchTerm: "x", MinPrice: &alsoTen, SortBy: SortByName}
	if !a.Equal(b) {
		t.Fatalf("filters with equal bounds behind different pointers should be equal")
	}
	b.MinPrice = nil
	if a.Equal(b) {
		t.Fatalf("nil and non-nil bound should differ")
	}

	if DefaultFilters().Active() {
		t.Fatalf("default filters should not be active")
	}
	if !(Filters{SortBy: SortByRating}).Active() {
		t.Fatalf("non-default sort should count as active")
	}
}

func TestDefaultPagination(t *testing.T) {
	p := DefaultPagination()
	if p.CurrentPage != 1 || p.ItemsPerPage != 15 {
		t.Fatalf("unexpected default pagination: %+v", p)
	}
}

// ---- Interface compile-time test ----

// mockGateway ensures CatalogGateway interface stays stable
type mockGateway struct{}

func (m *mockGateway) FetchAll(ctx context.Context) ([]Product, error) {
	return nil, nil
}

func (m *mockGateway) Create(ctx context.Context, d ProductDraft) (Product, error) {
	return Product{}, nil
}

// compile-time assertion
var _ CatalogGateway = (*mockGateway)(nil)
