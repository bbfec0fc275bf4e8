// Package supabase is the hosted catalog backend. It talks to the
// Supabase PostgREST API directly; the tables mirror the relational
// backends' schema.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

type client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

func newClient(baseURL, key string) *client {
	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// apiError is the PostgREST error payload.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (code %s)", e.Message, e.Code)
	}
	return "supabase: " + e.Message
}

// do performs one REST call against table. Query params go through
// url.Values so filters like id=eq.x are escaped properly. When out is
// non-nil the response body is decoded into it.
func (c *client) do(ctx context.Context, method, table string, params url.Values, body any, prefer string, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *client) get(ctx context.Context, table string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, table, params, nil, "", out)
}

func (c *client) insert(ctx context.Context, table string, body any) error {
	return c.do(ctx, http.MethodPost, table, nil, body, "", nil)
}

func (c *client) patch(ctx context.Context, table string, params url.Values, body any) error {
	return c.do(ctx, http.MethodPatch, table, params, body, "", nil)
}

func (c *client) delete(ctx context.Context, table string, params url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, table, params, nil, "return=representation", out)
}

func eq(column, value string) url.Values {
	v := url.Values{}
	v.Set(column, "eq."+value)
	return v
}
