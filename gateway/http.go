package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"catalogdash/domain"
)

const (
	msgFetchFailed  = "Failed to fetch products"
	msgCreateFailed = "Failed to create product"
)

// HTTPGateway is the remote catalog reached over HTTP.
type HTTPGateway struct {
	client    Doer
	listURL   string
	createURL string
	logger    *slog.Logger
	metrics   *Metrics
}

var _ domain.CatalogGateway = (*HTTPGateway)(nil)

// NewHTTPGateway builds a gateway that lists from listURL and posts new
// products to createURL. An empty createURL means listURL. metrics may be nil.
func NewHTTPGateway(client Doer, listURL, createURL string, logger *slog.Logger, metrics *Metrics) *HTTPGateway {
	if createURL == "" {
		createURL = listURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPGateway{
		client:    client,
		listURL:   listURL,
		createURL: createURL,
		logger:    logger,
		metrics:   metrics,
	}
}

// FetchAll GETs the whole catalog. A non-2xx status or an unparseable body
// fails with "Failed to fetch products"; transport failures keep their own message.
func (g *HTTPGateway) FetchAll(ctx context.Context) (products []domain.Product, err error) {
	start := time.Now()
	defer func() { g.metrics.observe(opFetch, start, err) }()

	req, err := newRequest(ctx, http.MethodGet, g.listURL, nil)
	if err != nil {
		return nil, domain.NewGatewayError(opFetch, 0, err.Error(), err)
	}
	log := g.logger.With("op", opFetch, "request_id", req.Header.Get(RequestIDHeader))

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		var se *serverError
		if errors.As(err, &se) {
			log.Warn("catalog fetch rejected", "status", se.Status)
			return nil, domain.NewGatewayError(opFetch, se.Status, msgFetchFailed, err)
		}
		log.Error("catalog fetch failed", "error", err)
		return nil, domain.NewGatewayError(opFetch, 0, err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		log.Warn("catalog fetch rejected", "status", resp.StatusCode)
		return nil, domain.NewGatewayError(opFetch, resp.StatusCode, msgFetchFailed, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Error("read catalog body", "error", err)
		return nil, domain.NewGatewayError(opFetch, resp.StatusCode, msgFetchFailed, err)
	}
	products, err = DecodeProducts(body)
	if err != nil {
		log.Warn("catalog body is not a product list", "error", err)
		return nil, domain.NewGatewayError(opFetch, resp.StatusCode, msgFetchFailed, err)
	}

	log.Debug("catalog fetched",
		"count", len(products),
		"duration_ms", time.Since(start).Milliseconds())
	return products, nil
}

// createRequest is the wire form of a new product. An empty description is sent as null.
type createRequest struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
}

func newCreateRequest(d domain.ProductDraft) createRequest {
	r := createRequest{Title: d.Title, Price: d.Price, Category: d.Category}
	if d.Description != "" {
		desc := d.Description
		r.Description = &desc
	}
	return r
}

// createdProduct accepts the server's echo of a new product, which may omit the rating.
type createdProduct struct {
	domain.Product
	Rating *domain.Rating `json:"rating"`
}

func (c createdProduct) normalize() domain.Product {
	p := c.Product
	if c.Rating != nil {
		p.Rating = *c.Rating
	} else {
		p.Rating = domain.Rating{Rate: domain.NumberOf(0), Count: 0}
	}
	return p
}

type errorBody struct {
	Message string `json:"message"`
}

// Create POSTs draft. On a non-2xx status the message field of the response
// body is returned when present, otherwise "Failed to create product".
func (g *HTTPGateway) Create(ctx context.Context, draft domain.ProductDraft) (product domain.Product, err error) {
	start := time.Now()
	defer func() { g.metrics.observe(opCreate, start, err) }()

	payload, err := json.Marshal(newCreateRequest(draft))
	if err != nil {
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, err.Error(), err)
	}
	req, err := newRequest(ctx, http.MethodPost, g.createURL, bytes.NewReader(payload))
	if err != nil {
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	log := g.logger.With("op", opCreate, "request_id", req.Header.Get(RequestIDHeader))

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		var se *serverError
		if errors.As(err, &se) {
			log.Warn("create rejected", "status", se.Status)
			return domain.Product{}, domain.NewGatewayError(opCreate, se.Status, createFailureMessage(se.Body), err)
		}
		log.Error("create failed", "error", err)
		return domain.Product{}, domain.NewGatewayError(opCreate, 0, err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Error("read create response", "error", err)
		return domain.Product{}, domain.NewGatewayError(opCreate, resp.StatusCode, msgCreateFailed, err)
	}

	if !isSuccess(resp.StatusCode) {
		log.Warn("create rejected", "status", resp.StatusCode)
		return domain.Product{}, domain.NewGatewayError(opCreate, resp.StatusCode, createFailureMessage(body), nil)
	}

	var created createdProduct
	if err := json.Unmarshal(body, &created); err != nil {
		log.Warn("create response is not a product", "error", err)
		return domain.Product{}, domain.NewGatewayError(opCreate, resp.StatusCode, msgCreateFailed, err)
	}
	product = created.normalize()

	log.Info("product created",
		"product_id", product.ID,
		"duration_ms", time.Since(start).Milliseconds())
	return product, nil
}

func createFailureMessage(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
		return eb.Message
	}
	return msgCreateFailed
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
