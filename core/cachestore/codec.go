package cachestore

import (
	"bytes"
	"fmt"

	"catalog-sync/core/models"

	"github.com/goccy/go-json"
)

// Encode serializes entries as an indented JSON object keyed by SKU.
func Encode(entries map[string]models.Match) ([]byte, error) {
	if entries == nil {
		entries = map[string]models.Match{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// Decode parses a document. Empty input and null are an empty cache.
func Decode(data []byte) (map[string]models.Match, error) {
	entries := map[string]models.Match{}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return map[string]models.Match{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// A literal null decodes to a nil map.
	if entries == nil {
		entries = map[string]models.Match{}
	}
	for key, m := range entries {
		if m.SKU == "" {
			m.SKU = key
			entries[key] = m
		}
	}
	return entries, nil
}
