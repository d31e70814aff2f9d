package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/jacke/canoe/internal/telemetry"
)

// HTTPClient is the default Client: it speaks the bot API's HTTP(S) wire
// format directly, switching between a JSON body and a streamed multipart
// body depending on whether the method carries uploads.
type HTTPClient struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client (timeouts, transport,
// proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithBaseURL overrides the API base URL, mainly for testing against a
// local server.
func WithBaseURL(url string) Option {
	return func(c *HTTPClient) { c.baseURL = url }
}

// WithLogger sets the structured logger used for transport diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = logger }
}

// WithTracer sets the tracer used to span each method execution.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *HTTPClient) { c.tracer = tracer }
}

// WithMetrics sets the metrics instruments method calls are recorded on.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// NewHTTPClient builds an HTTPClient authenticated with token.
func NewHTTPClient(token string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		token:   token,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
		tracer:  nooptrace.NewTracerProvider().Tracer("canoe/telegram"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// Do implements Client. It builds the request body (JSON or multipart),
// executes it, and unwraps the response envelope.
func (c *HTTPClient) Do(ctx context.Context, method string, fields map[string]any, uploads []Upload) (json.RawMessage, error) {
	ctx, span := telemetry.StartExecuteSpan(ctx, c.tracer, method)
	defer span.End()
	start := time.Now()

	body, contentType, err := buildRequestBody(fields, uploads)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordError(ctx, method)
		return nil, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.recordError(ctx, method)
		return nil, &DecodingError{Method: method, Err: err}
	}

	c.recordDuration(ctx, time.Since(start))

	if !env.OK {
		c.recordError(ctx, method)
		return nil, &FailedMethodError{Method: method, Description: env.Description, ErrorCode: env.ErrorCode}
	}
	return env.Result, nil
}

func (c *HTTPClient) recordError(ctx context.Context, method string) {
	if c.metrics == nil {
		return
	}
	c.metrics.MethodErrors.Add(ctx, 1, telemetry.MethodAttr(method))
}

func (c *HTTPClient) recordDuration(ctx context.Context, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.MethodDuration.Record(ctx, d.Seconds())
}

// buildRequestBody picks JSON when there are no uploads and streamed
// multipart otherwise. Multipart scalar fields are derived from the same
// JSON-shaped map, with nulls and sub-objects/arrays omitted; the JSON body
// carries the whole map.
func buildRequestBody(fields map[string]any, uploads []Upload) (io.Reader, string, error) {
	if len(uploads) == 0 {
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() {
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			pw.Close()
		}()

		for k, v := range scalarFields(fields) {
			if err = w.WriteField(k, v); err != nil {
				return
			}
		}
		for _, u := range uploads {
			if u.isExisting() {
				if err = w.WriteField(u.Field, u.FileID); err != nil {
					return
				}
				continue
			}
			var part io.Writer
			part, err = w.CreateFormFile(u.Field, u.Filename)
			if err != nil {
				return
			}
			if _, err = io.Copy(part, u.Reader); err != nil {
				return
			}
		}
		err = w.Close()
	}()

	return pr, w.FormDataContentType(), nil
}

// scalarFields projects fields down to the string-valued subset a multipart
// form field can carry, omitting nulls, sub-objects, and arrays.
func scalarFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			// sub-objects and arrays are not representable as scalar form
			// fields and are omitted, as they would be absent from a
			// minimal JSON request containing only scalar leaves.
		}
	}
	return out
}
