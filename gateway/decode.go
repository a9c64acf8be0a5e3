package gateway

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"catalogdash/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// DecodeProducts decodes a JSON array of products. Elements are decoded one by
// one: a field of the wrong JSON type is left zero and the rest of the record
// is kept, so only fields that matter to domain.Product.Valid can hide it.
func DecodeProducts(b []byte) ([]domain.Product, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	out := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		out = append(out, decodeProduct(r))
	}
	return out, nil
}

// DecodeCatalog accepts a JSON array or NDJSON (one product per line).
// An empty input is an empty catalog.
func DecodeCatalog(b []byte) ([]domain.Product, error) {
	btrim := bytes.TrimSpace(b)
	if len(btrim) == 0 {
		return []domain.Product{}, nil
	}

	// JSON array
	if btrim[0] == '[' {
		return DecodeProducts(btrim)
	}

	// NDJSON or single JSON object
	products := []domain.Product{}
	scanner := bufio.NewScanner(bytes.NewReader(btrim))
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		if !json.Valid(b) {
			return nil, fmt.Errorf("decode catalog line %d: invalid JSON", line)
		}
		products = append(products, decodeProduct(b))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func decodeProduct(r json.RawMessage) domain.Product {
	var p domain.Product
	err := json.Unmarshal(r, &p)
	if err == nil {
		return p
	}
	// mistyped fields are left zero and the rest is kept; Valid decides
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return p
	}
	return domain.Product{}
}
