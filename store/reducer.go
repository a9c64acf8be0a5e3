package store

import (
	"slices"

	"catalogdash/domain"
)

// Result is the outcome of an asynchronous call: Ok(value) or Err(message).
type Result[T any] struct {
	Value T
	Err   string
	ok    bool
}

// Ok wraps a successful outcome.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, ok: true}
}

// Err wraps a failed outcome.
func Err[T any](message string) Result[T] {
	return Result[T]{Err: message}
}

// IsOk reports whether the call succeeded.
func (r Result[T]) IsOk() bool {
	return r.ok
}

// Action is a state transition request consumed by Reduce.
type Action interface {
	action()
}

type (
	// FetchStarted marks the beginning of a fetch-all call.
	FetchStarted struct{}
	// FetchResolved delivers the outcome of a fetch-all call.
	FetchResolved struct{ Result Result[[]domain.Product] }
	// CreateStarted marks the beginning of a create call.
	CreateStarted struct{}
	// CreateResolved delivers the outcome of a create call.
	CreateResolved struct{ Result Result[domain.Product] }

	SearchTermSet  struct{ Term string }
	CategorySet    struct{ Category string }
	PriceRangeSet  struct{ Min, Max *float64 }
	SortBySet      struct{ SortBy domain.SortBy }
	FiltersCleared struct{}
	CurrentPageSet struct{ Page int }
)

func (FetchStarted) action()   {}
func (FetchResolved) action()  {}
func (CreateStarted) action()  {}
func (CreateResolved) action() {}
func (SearchTermSet) action()  {}
func (CategorySet) action()    {}
func (PriceRangeSet) action()  {}
func (SortBySet) action()      {}
func (FiltersCleared) action() {}
func (CurrentPageSet) action() {}

// Reduce returns the state that follows s after a. It never modifies s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted, CreateStarted:
		s.Status = StatusLoading
		s.Error = ""
	case FetchResolved:
		if !a.Result.IsOk() {
			return failed(s, a.Result.Err)
		}
		s.Products = slices.Clone(a.Result.Value)
		if s.Products == nil {
			s.Products = []domain.Product{}
		}
		s.Status = StatusSucceeded
		s.Error = ""
		s.Revision++
	case CreateResolved:
		if !a.Result.IsOk() {
			return failed(s, a.Result.Err)
		}
		// clip so the append always copies and earlier snapshots stay intact
		s.Products = append(slices.Clip(s.Products), a.Result.Value)
		s.Status = StatusSucceeded
		s.Error = ""
		s.Revision++
	case SearchTermSet:
		s.Filters.SearchTerm = a.Term
		s.Pagination.CurrentPage = 1
	case CategorySet:
		s.Filters.Category = a.Category
		s.Pagination.CurrentPage = 1
	case PriceRangeSet:
		s.Filters.MinPrice = copyBound(a.Min)
		s.Filters.MaxPrice = copyBound(a.Max)
		s.Pagination.CurrentPage = 1
	case SortBySet:
		s.Filters.SortBy = a.SortBy
		s.Pagination.CurrentPage = 1
	case FiltersCleared:
		s.Filters = domain.DefaultFilters()
		s.Pagination.CurrentPage = 1
	case CurrentPageSet:
		s.Pagination.CurrentPage = a.Page
	}
	return s
}

func failed(s State, message string) State {
	s.Status = StatusFailed
	s.Error = message
	return s
}

func copyBound(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
