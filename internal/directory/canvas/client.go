package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomnomnom/linkheader"
	"go.uber.org/zap"

	"peer-review-assigner/internal/api"
	"peer-review-assigner/internal/directory"
)

const maxBodySize = 8 << 20

var errTooManyPages = errors.New("pagination did not terminate")

func New(config *Config, token string, logger *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("canvas: token is required")
	}

	root, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("canvas: invalid base url %q: %w", config.BaseURL, err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("canvas: base url %q must be absolute", config.BaseURL)
	}

	perPage := config.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = 100
	}

	return &Client{
		root:     root,
		token:    token,
		http:     &http.Client{Timeout: config.Timeout},
		logger:   logger,
		perPage:  perPage,
		maxPages: maxPages,
	}, nil
}

// Fetch performs a GET on path (relative to the API root) and decodes the
// response into out.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, c.endpoint(path, query), nil, out)
	return err
}

// Submit POSTs form to path and decodes the response into out.
func (c *Client) Submit(ctx context.Context, path string, form url.Values, out any) error {
	_, err := c.do(ctx, http.MethodPost, c.endpoint(path, nil), form, out)
	return err
}

// fetchAll follows rel="next" links until the last page.
func fetchAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var (
		all  []T
		next = c.endpoint(path, query)
	)

	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%s: %w after %d pages", path, errTooManyPages, page)
		}

		var items []T
		link, err := c.do(ctx, http.MethodGet, next, nil, &items)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
		next = link
	}

	return all, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.root
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and returns the rel="next" link of the response.
func (c *Client) do(ctx context.Context, method, target string, form url.Values, out any) (string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)

	if err = classify(resp.StatusCode, raw); err != nil {
		c.logger.Warn("platform rejected request",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return "", err
	}

	if out != nil {
		if err = json.Unmarshal(raw, out); err != nil {
			return "", &directory.RemoteError{
				Kind:       directory.ErrDecodeFailure,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("unexpected payload: %v", err),
			}
		}
	}

	return nextLink(resp.Header.Get("Link")), nil
}

func classify(status int, raw []byte) error {
	kind := directory.ErrPlatform
	if status == http.StatusUnauthorized {
		kind = directory.ErrUnauthorized
	}

	if !json.Valid(raw) {
		if kind == directory.ErrUnauthorized {
			return &directory.RemoteError{Kind: kind, StatusCode: status, Message: http.StatusText(status)}
		}
		return &directory.RemoteError{Kind: directory.ErrDecodeFailure, StatusCode: status}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Errors json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Errors) > 0 && string(envelope.Errors) != "null" {
			msg := api.ParseErrors(envelope.Errors)
			if msg == "" {
				msg = http.StatusText(status)
			}
			return &directory.RemoteError{Kind: kind, StatusCode: status, Message: msg}
		}
	}

	if status >= http.StatusBadRequest {
		return &directory.RemoteError{Kind: kind, StatusCode: status, Message: http.StatusText(status)}
	}

	return nil
}

// nextLink returns the rel="next" target of a Link header.
func nextLink(header string) string {
	for _, l := range linkheader.Parse(header).FilterByRel("next") {
		return l.URL
	}
	return ""
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
