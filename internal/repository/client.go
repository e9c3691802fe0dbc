// Package repository talks to the REST backend that owns every blog,
// project, skill, message and user record.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/config"
)

const (
	apiPrefix       = "/api/v1/"
	maxResponseBody = 10 << 20
)

// Result is the envelope every backend endpoint answers with. Anything
// without success set, whatever the HTTP status, is a failure, and network
// errors are folded into the same shape.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`

	// Status is the HTTP status of the response, 0 when none was received.
	Status int `json:"-"`
}

// Err returns nil for a successful result and the backend message otherwise.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	if r.Message == "" {
		return errors.New(config.ErrUnexpectedError)
	}
	return errors.New(r.Message)
}

func (r Result[T]) NotFound() bool {
	return r.Status == http.StatusNotFound
}

func failure[T any](status int, message string) Result[T] {
	return Result[T]{Status: status, Message: message}
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON and decodes the response into out. The returned
// status is 0 when the request never got an answer.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", config.CTypeJSON)
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, fmt.Errorf("empty response with status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response with status %d: %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	log := repoLogger.With().Str("method", method).Str("path", path).Logger()

	var res Result[T]
	status, err := c.do(ctx, method, path, body, &res)
	if err != nil {
		if status == 0 {
			log.Error().Err(err).Msg("Backend request failed")
			return failure[T](0, config.ErrBackendUnavailable)
		}
		log.Error().Err(err).Int("status", status).Msg("Unreadable backend response")
		if status == http.StatusNotFound {
			return failure[T](status, config.ErrNotFound)
		}
		return failure[T](status, config.ErrUnexpectedError)
	}

	res.Status = status
	if !res.Success {
		if res.Message == "" {
			res.Message = config.ErrUnexpectedError
		}
		log.Warn().Int("status", status).Str("message", res.Message).Msg("Backend reported a failure")
		return res
	}

	log.Debug().Int("status", status).Msg("Backend request succeeded")
	return res
}
