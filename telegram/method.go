package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Upload is one file parameter of a method call. An existing file is
// referenced by FileID; a new one is streamed from Reader under Filename.
// Readers are never copied into memory in full — Client implementations
// stream them directly into the outgoing request body.
type Upload struct {
	Field    string
	FileID   string
	Filename string
	Reader   io.Reader
}

func (u Upload) isExisting() bool { return u.Reader == nil }

// Method bundles everything needed to execute one RPC call and decode its
// typed response: the endpoint name, an encoder producing the JSON request
// object, an optional set of file uploads, and a decoder for the `result`
// payload of the response envelope.
type Method[Res any] struct {
	Name    string
	Encode  func() (map[string]any, error)
	Uploads func() ([]Upload, error)
	Decode  func(raw json.RawMessage) (Res, error)
}

// Client is the low-level RPC transport: it executes a named method with
// its encoded fields and uploads, returning the raw `result` payload. Every
// concrete Method is executed through it via Execute.
type Client interface {
	Do(ctx context.Context, method string, fields map[string]any, uploads []Upload) (json.RawMessage, error)
}

// Execute runs m against c: encodes the request, gathers any uploads,
// invokes the transport, and decodes the typed response. Transport and API
// failures are returned as-is (already typed as TransportError or
// FailedMethodError); decode failures are wrapped in DecodingError.
func Execute[Res any](ctx context.Context, c Client, m Method[Res]) (Res, error) {
	var zero Res

	fields, err := m.Encode()
	if err != nil {
		return zero, fmt.Errorf("canoe/telegram: encode %s: %w", m.Name, err)
	}

	var uploads []Upload
	if m.Uploads != nil {
		uploads, err = m.Uploads()
		if err != nil {
			return zero, fmt.Errorf("canoe/telegram: uploads %s: %w", m.Name, err)
		}
	}

	raw, err := c.Do(ctx, m.Name, fields, uploads)
	if err != nil {
		return zero, err
	}

	res, err := m.Decode(raw)
	if err != nil {
		return zero, &DecodingError{Method: m.Name, Err: err}
	}
	return res, nil
}
