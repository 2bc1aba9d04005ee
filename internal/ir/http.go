package ir

import (
	"context"
	"encoding/json"
)

// HTTPRequest is an abstract request against the management API.
// URL is relative to the space/environment base.
type HTTPRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    Object            `json:"data,omitempty"`
}

// CollectionResponse is the shape of every collection endpoint response.
type CollectionResponse struct {
	Total int               `json:"total"`
	Items []json.RawMessage `json:"items"`
}

// RequestFunc performs one HTTPRequest and decodes the collection response.
// Implementations must be safe for concurrent use.
type RequestFunc func(ctx context.Context, req HTTPRequest) (CollectionResponse, error)
