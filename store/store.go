package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"catalogdash/domain"
	"catalogdash/pipeline"
)

// Store owns the catalog state of one session. Gateway calls run outside the
// lock; their outcomes are applied in the order they resolve.
type Store struct {
	mu      sync.Mutex
	state   State
	gateway domain.CatalogGateway
	logger  *slog.Logger

	results    memo[resultsKey, []domain.Product]
	visible    memo[visibleKey, pipeline.Page]
	categories memo[uint64, []string]
	bounds     memo[uint64, pipeline.Bounds]
}

// Option configures a Store.
type Option func(*Store)

// WithItemsPerPage fixes the page size for the session. Non-positive values are ignored.
func WithItemsPerPage(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.state.Pagination.ItemsPerPage = n
		}
	}
}

// WithLogger sets the logger used for transitions and gateway failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs an idle Store backed by gw.
func New(gw domain.CatalogGateway, opts ...Option) *Store {
	s := &Store{
		state:   NewState(domain.DefaultItemsPerPage),
		gateway: gw,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a to the current state and returns the new snapshot.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	s.logger.Debug("state transition",
		"action", actionName(a),
		"status", s.state.Status.String(),
		"revision", s.state.Revision,
		"page", s.state.Pagination.CurrentPage)
	return s.state
}

// FetchAll replaces the product list with the gateway's current catalog.
// On failure the previous products are kept and the error is recorded in
// state as well as returned.
func (s *Store) FetchAll(ctx context.Context) error {
	s.Dispatch(FetchStarted{})

	start := time.Now()
	products, err := s.gateway.FetchAll(ctx)
	if err != nil {
		msg := errorMessage(err, "Failed to fetch products")
		s.Dispatch(FetchResolved{Result: Err[[]domain.Product](msg)})
		s.logger.Warn("fetch products failed",
			"error", msg,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	st := s.Dispatch(FetchResolved{Result: Ok(products)})
	s.logger.Info("products fetched",
		"count", len(products),
		"revision", st.Revision,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// CreateOne validates draft and submits it. A draft that fails validation is
// rejected with a *domain.ValidationError before any gateway call and
// without changing state.
func (s *Store) CreateOne(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	draft, err := domain.ValidateDraft(draft)
	if err != nil {
		return domain.Product{}, err
	}

	s.Dispatch(CreateStarted{})

	start := time.Now()
	p, err := s.gateway.Create(ctx, draft)
	if err != nil {
		msg := errorMessage(err, "Failed to create product")
		s.Dispatch(CreateResolved{Result: Err[domain.Product](msg)})
		s.logger.Warn("create product failed",
			"error", msg,
			"duration_ms", time.Since(start).Milliseconds())
		return domain.Product{}, err
	}

	s.Dispatch(CreateResolved{Result: Ok(p)})
	s.logger.Info("product created",
		"product_id", p.ID,
		"duration_ms", time.Since(start).Milliseconds())
	return p, nil
}

func (s *Store) SetSearchTerm(term string) { s.Dispatch(SearchTermSet{Term: term}) }

func (s *Store) SetCategory(category string) { s.Dispatch(CategorySet{Category: category}) }

// SetPriceRange sets both bounds at once. nil means unbounded.
func (s *Store) SetPriceRange(lo, hi *float64) {
	s.Dispatch(PriceRangeSet{Min: lo, Max: hi})
}

func (s *Store) SetSortBy(by domain.SortBy) { s.Dispatch(SortBySet{SortBy: by}) }

// ClearFilters restores the default filters and returns to the first page.
func (s *Store) ClearFilters() { s.Dispatch(FiltersCleared{}) }

// SetCurrentPage moves to page n. n is not range checked; pages outside the
// result list render empty.
func (s *Store) SetCurrentPage(n int) { s.Dispatch(CurrentPageSet{Page: n}) }

// HasActiveFilters reports whether any filter differs from its default.
func (s *Store) HasActiveFilters() bool {
	return s.State().Filters.Active()
}

// Product looks id up in the loaded list.
func (s *Store) Product(id int) (domain.Product, error) {
	st := s.State()
	for _, p := range st.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.NewProductNotFoundError(id)
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func actionName(a Action) string {
	switch a.(type) {
	case FetchStarted:
		return "fetch/pending"
	case FetchResolved:
		return "fetch/resolved"
	case CreateStarted:
		return "create/pending"
	case CreateResolved:
		return "create/resolved"
	case SearchTermSet:
		return "filters/search"
	case CategorySet:
		return "filters/category"
	case PriceRangeSet:
		return "filters/price"
	case SortBySet:
		return "filters/sort"
	case FiltersCleared:
		return "filters/clear"
	case CurrentPageSet:
		return "pagination/page"
	default:
		return "unknown"
	}
}
