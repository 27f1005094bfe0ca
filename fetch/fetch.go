// Package fetch contains helpers to talk JSON with remote services.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// StatusError is returned when a service answers with a non 2xx status.
type StatusError struct {
	Method string
	URL    string
	Status string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http %s %s: %s", e.Method, e.URL, e.Status)
}

// Client returns c, or http.DefaultClient if c is nil.
func Client(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

// Do sends req and returns the body of a successful response.
//
// Non 2xx responses are returned as a *StatusError carrying the body.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := Client(client).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	zap.L().Debug("http",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.String("status", resp.Status))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method: req.Method,
			URL:    req.URL.Host + req.URL.Path,
			Status: resp.Status,
			Code:   resp.StatusCode,
			Body:   buf.Bytes(),
		}
	}
	return buf.Bytes(), nil
}

func addHeader(req *http.Request, header http.Header) {
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, header http.Header, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	addHeader(req, header)
	req.Header.Set("Accept", "application/json")
	body, err := Do(client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("cannot decode response from %s%s: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}

// PostJSON sends payload as a JSON body and returns the raw response body.
func PostJSON(ctx context.Context, client *http.Client, addr string, header http.Header, payload any) ([]byte, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	addHeader(req, header)
	req.Header.Set("Content-Type", "application/json")
	return Do(client, req)
}
