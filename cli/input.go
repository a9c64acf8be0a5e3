package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"catalogdash/domain"
)

// parseDrafts reads product drafts from a JSON array or NDJSON.
func parseDrafts(b []byte) ([]domain.ProductDraft, error) {
	btrim := bytes.TrimSpace(b)
	if len(btrim) == 0 {
		return nil, errors.New("empty file")
	}

	var drafts []domain.ProductDraft

	// JSON array
	if btrim[0] == '[' {
		if err := json.Unmarshal(btrim, &drafts); err != nil {
			return nil, err
		}
		return drafts, nil
	}

	// NDJSON or single JSON object
	scanner := bufio.NewScanner(bytes.NewReader(btrim))
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var d domain.ProductDraft
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		drafts = append(drafts, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}
