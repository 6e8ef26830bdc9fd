// Package gateway implements console.Gateway over the especialidades REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/admision/internal/console"
	"github.com/simp-lee/admision/internal/domain"
)

// BasePath is the collection path of the especialidades resource.
const BasePath = "/admision/ficheros/especialidades"

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// Client talks to the especialidades API. It keeps no state between calls.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the service at baseURL (scheme and host, with an
// optional path prefix). A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ console.Gateway = (*Client)(nil)

// List fetches one page of especialidades.
func (c *Client) List(ctx context.Context, q console.ListQuery) (*domain.PageResult[domain.Especialidad], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("q", s)
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}

	var page domain.PageResult[domain.Especialidad]
	if err := c.do(ctx, http.MethodGet, BasePath, params, nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []domain.Especialidad{}
	}
	return &page, nil
}

// NextCode returns the codigo the server would assign next. A missing value
// yields an empty string.
func (c *Client) NextCode(ctx context.Context) (string, error) {
	var env struct {
		Data struct {
			Codigo json.RawMessage `json:"codigo"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, BasePath+"/next-codigo", nil, nil, &env); err != nil {
		return "", err
	}
	return coerceCodigo(env.Data.Codigo), nil
}

// Create registers a new especialidad.
func (c *Client) Create(ctx context.Context, in console.CreateInput) (*domain.Especialidad, error) {
	body := map[string]any{"descripcion": in.Descripcion}
	if in.Estado != "" {
		body["estado"] = in.Estado
	}
	return c.record(ctx, http.MethodPost, BasePath+"/", body)
}

// Update replaces the descripcion and estado of the especialidad id.
func (c *Client) Update(ctx context.Context, id uint, in console.UpdateInput) (*domain.Especialidad, error) {
	body := map[string]any{"descripcion": in.Descripcion, "estado": in.Estado}
	return c.record(ctx, http.MethodPut, recordPath(id), body)
}

// Deactivate marks the especialidad id as INACTIVO.
func (c *Client) Deactivate(ctx context.Context, id uint) (*domain.Especialidad, error) {
	return c.record(ctx, http.MethodPatch, recordPath(id)+"/desactivar", nil)
}

func recordPath(id uint) string {
	return BasePath + "/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) record(ctx context.Context, method, path string, body any) (*domain.Especialidad, error) {
	var env struct {
		Data *domain.Especialidad `json:"data"`
	}
	if err := c.do(ctx, method, path, nil, body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.ID == 0 {
		return nil, newError(KindDecode, "", http.StatusOK, errors.New("response carries no record"))
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return newError(KindDecode, "", 0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return newError(KindNetwork, "", 0, err)
	}
	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, id)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx = logger.WithContextAttrs(ctx,
		slog.String("request_id", id),
		slog.String("method", method),
		slog.String("path", path),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "gateway request failed", slog.Any("error", err))
		return newError(KindNetwork, "", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.DebugContext(ctx, "gateway request",
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)
	if err != nil {
		return newError(KindNetwork, "", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(KindDecode, "", resp.StatusCode, err)
	}
	return nil
}

// decodeFailure builds the Error for a non-2xx response. Only bodies that
// carry both a string kind and a string message are trusted.
func decodeFailure(status int, body []byte) *Error {
	var shape struct {
		Kind    *string `json:"kind"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &shape); err != nil || shape.Kind == nil || shape.Message == nil {
		return newError(KindHTTP, "", status, nil)
	}
	return newError(*shape.Kind, *shape.Message, status, nil)
}

// coerceCodigo accepts a JSON string or number and returns it as trimmed text.
func coerceCodigo(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
