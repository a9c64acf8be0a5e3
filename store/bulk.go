package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalogdash/domain"
)

// DefaultImportWorkers bounds concurrent creates in CreateMany.
const DefaultImportWorkers = 4

// CreateMany submits every draft through CreateOne with at most workers calls
// in flight. Created products are returned in input order; failed drafts are
// skipped and reported in the joined error, each tagged with its 1-based position.
func (s *Store) CreateMany(ctx context.Context, drafts []domain.ProductDraft, workers int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return []domain.Product{}, nil
	}
	if workers < 1 {
		workers = DefaultImportWorkers
	}

	type job struct {
		idx   int
		draft domain.ProductDraft
	}
	type result struct {
		idx     int
		product domain.Product
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(drafts))

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for j := range jobs {
			p, err := s.CreateOne(ctx, j.draft)
			if err != nil {
				err = fmt.Errorf("record %d: %w", j.idx+1, err)
			}
			results <- result{idx: j.idx, product: p, err: err}
		}
	}

	nWorkers := min(workers, len(drafts))
	wg.Add(nWorkers)
	for i := 0; i < nWorkers; i++ {
		go worker()
	}

	// feed jobs
	go func() {
		defer close(jobs)
		for i, d := range drafts {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{idx: i, draft: d}:
			}
		}
	}()

	wg.Wait()
	close(results)

	ordered := make([]*result, len(drafts))
	for res := range results {
		ordered[res.idx] = &res
	}

	out := make([]domain.Product, 0, len(drafts))
	var errs []error
	for _, res := range ordered {
		switch {
		case res == nil:
			// never dispatched: the context was cancelled first
		case res.err != nil:
			errs = append(errs, res.err)
		default:
			out = append(out, res.product)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info("bulk create finished",
		"submitted", len(drafts),
		"created", len(out),
		"failed", len(drafts)-len(out))
	return out, errors.Join(errs...)
}
