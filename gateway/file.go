package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"catalogdash/domain"
)

// FileGateway is a remote catalog backed by a JSON file. It reads the file on
// every fetch so edits made by other processes show up on refresh.
type FileGateway struct {
	mu      sync.Mutex
	path    string
	logger  *slog.Logger
	metrics *Metrics
}

// compile-time assertion
var _ domain.CatalogGateway = (*FileGateway)(nil)

// NewFileGateway constructs a FileGateway at the given path. A missing file is
// an empty catalog; it is created on the first Create.
func NewFileGateway(path string, logger *slog.Logger, metrics *Metrics) (*FileGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("file path required for file gateway")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileGateway{path: path, logger: logger, metrics: metrics}, nil
}

func (g *FileGateway) load() ([]domain.Product, error) {
	b, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no file yet; that's fine
			return []domain.Product{}, nil
		}
		return nil, err
	}
	return DecodeCatalog(b)
}

func (g *FileGateway) save(products []domain.Product) error {
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, g.path)
}

// FetchAll reads the whole catalog in file order.
func (g *FileGateway) FetchAll(ctx context.Context) (products []domain.Product, err error) {
	start := time.Now()
	defer func() { g.metrics.observe(opFetch, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, domain.NewGatewayError(opFetch, 0, err.Error(), err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	products, err = g.load()
	if err != nil {
		g.logger.Warn("catalog file unreadable", "path", g.path, "error", err)
		return nil, domain.NewGatewayError(opFetch, 0, msgFetchFailed, err)
	}
	return products, nil
}

// Create appends draft with the next free id and rewrites the file atomically.
func (g *FileGateway) Create(ctx context.Context, draft domain.ProductDraft) (product domain.Product, err error) {
	start := time.Now()
	defer func() { g.metrics.observe(opCreate, start, err) }()

	if err := ctx.Err(); err != nil {
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, err.Error(), err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	products, err := g.load()
	if err != nil {
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, msgCreateFailed, err)
	}

	nextID := 1
	for _, p := range products {
		nextID = max(nextID, p.ID+1)
	}
	product = domain.Product{
		ID:          nextID,
		Title:       draft.Title,
		Price:       domain.NumberOf(draft.Price),
		Description: draft.Description,
		Category:    draft.Category,
		Rating:      domain.Rating{Rate: domain.NumberOf(0), Count: 0},
	}

	if err := g.save(append(products, product)); err != nil {
		g.logger.Error("write catalog file", "path", g.path, "error", err)
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, msgCreateFailed, err)
	}
	return product, nil
}
