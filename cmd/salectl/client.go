package main

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainsafe/primary-sale-minter/pkg/auth"
)

// client calls the sale server, signing every request with key when set.
type client struct {
	baseURL string
	key     *ecdsa.PrivateKey
	http    *http.Client
	now     func() time.Time
}

func newClient(baseURL string, key *ecdsa.PrivateKey, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// apiError is a non-2xx server response.
type apiError struct {
	Status  int    `json:"code"`
	Message string `json:"error"`
	Reason  string `json:"reason,omitempty"`
}

func (e *apiError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%d %s (reason %s)", e.Status, e.Message, e.Reason)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// do sends body as JSON to path and decodes the response into out.
func (c *client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = raw
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.key != nil {
		msg := auth.RequestMessage(method, req.URL.Path, payload, auth.NewNonce(), c.now())
		sig, err := auth.SignEIP191(c.key, msg)
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set(auth.HeaderMessage, msg)
		req.Header.Set(auth.HeaderSignature, sig)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
