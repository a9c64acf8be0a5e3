// Package store holds the catalog state for one session and the commands that change it.
package store

import "catalogdash/domain"

// Status is the lifecycle of the most recent remote call.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is an immutable snapshot of the catalog. Products must be treated
// as read-only: transitions always build a new slice.
type State struct {
	Products   []domain.Product  `json:"products"`
	Status     Status            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Filters    domain.Filters    `json:"filters"`
	Pagination domain.Pagination `json:"pagination"`
	// Revision changes whenever Products changes.
	Revision uint64 `json:"revision"`
}

// NewState returns the empty state of a fresh session.
func NewState(itemsPerPage int) State {
	p := domain.DefaultPagination()
	if itemsPerPage > 0 {
		p.ItemsPerPage = itemsPerPage
	}
	return State{
		Products:   []domain.Product{},
		Status:     StatusIdle,
		Filters:    domain.DefaultFilters(),
		Pagination: p,
	}
}
