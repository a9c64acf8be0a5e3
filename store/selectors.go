package store

import (
	"catalogdash/domain"
	"catalogdash/pipeline"
)

// memo caches the last value computed for a key.
type memo[K, V any] struct {
	key   K
	val   V
	valid bool
}

func (m *memo[K, V]) get(key K, eq func(a, b K) bool, compute func() V) V {
	if m.valid && eq(m.key, key) {
		return m.val
	}
	m.key, m.val, m.valid = key, compute(), true
	return m.val
}

type resultsKey struct {
	revision uint64
	filters  domain.Filters
}

func (k resultsKey) equal(o resultsKey) bool {
	return k.revision == o.revision && k.filters.Equal(o.filters)
}

type visibleKey struct {
	resultsKey
	pagination domain.Pagination
}

func (k visibleKey) equal(o visibleKey) bool {
	return k.resultsKey.equal(o.resultsKey) && k.pagination == o.pagination
}

func sameRevision(a, b uint64) bool { return a == b }

// Results returns the full filtered and sorted list for the current state.
func (s *Store) Results() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsLocked()
}

func (s *Store) resultsLocked() []domain.Product {
	st := s.state
	key := resultsKey{revision: st.Revision, filters: st.Filters}
	return s.results.get(key, resultsKey.equal, func() []domain.Product {
		return pipeline.Query(st.Products, st.Filters)
	})
}

// Visible returns the current page of results.
func (s *Store) Visible() pipeline.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	key := visibleKey{
		resultsKey: resultsKey{revision: st.Revision, filters: st.Filters},
		pagination: st.Pagination,
	}
	return s.visible.get(key, visibleKey.equal, func() pipeline.Page {
		return pipeline.PageOf(s.resultsLocked(), st.Pagination)
	})
}

// Categories returns the distinct categories of the valid products.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	return s.categories.get(st.Revision, sameRevision, func() []string {
		return pipeline.Categories(st.Products)
	})
}

// PriceBounds returns the price range of the valid products.
func (s *Store) PriceBounds() pipeline.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	return s.bounds.get(st.Revision, sameRevision, func() pipeline.Bounds {
		return pipeline.PriceBounds(st.Products)
	})
}
