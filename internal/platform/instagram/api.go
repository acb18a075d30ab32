package instagram

import (
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// do sends req and returns the response together with its fully read body.
// Cookies and auth headers from the response are folded into the client.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var bodyReader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		bodyReader = gzReader
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.syncCookies(req.URL)
	c.updateFromResponseHeaders(resp.Header)

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("instagram request")
	c.log.Trace().Bytes("body", body).Msg("instagram response body")

	return resp, body, nil
}

// decode checks an API response for failure and unmarshals it into v.
func (c *Client) decode(resp *http.Response, body []byte, v any) error {
	var apiResp APIResponse
	_ = json.Unmarshal(body, &apiResp)

	if resp.StatusCode != http.StatusOK || apiResp.Status == "fail" {
		return c.handleAPIError(resp.StatusCode, &apiResp, body)
	}

	if v == nil {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(req *http.Request, v any) error {
	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	return c.decode(resp, body, v)
}

// syncCookies copies the jar's view of u into the serializable cookie map.
func (c *Client) syncCookies(u *url.URL) {
	cookies := c.httpClient.Jar.Cookies(u)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cookie := range cookies {
		c.Cookies[cookie.Name] = cookie.Value

		switch cookie.Name {
		case "csrftoken":
			c.csrfToken = cookie.Value
		case "mid":
			c.Mid = cookie.Value
		case "sessionid":
			c.SessionID = cookie.Value
		}
	}
}

// updateFromResponseHeaders updates client state from response headers
func (c *Client) updateFromResponseHeaders(headers http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if auth := headers.Get("ig-set-authorization"); auth != "" {
		if parsed := parseAuthorization(auth); parsed != nil {
			c.AuthorizationData = parsed
		}
	}

	if rur := headers.Get("ig-set-ig-u-rur"); rur != "" {
		c.IgURur = rur
	}

	if claim := headers.Get("x-ig-set-www-claim"); claim != "" {
		c.IgWwwClaim = claim
	}
}

// parseAuthorization decodes a "Bearer IGT:2:<base64 json>" header value.
func parseAuthorization(auth string) map[string]any {
	parts := strings.Split(auth, ":")
	if len(parts) < 2 {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[len(parts)-1])
	if err != nil {
		return nil
	}

	var result map[string]any
	if err := json.Unmarshal(decoded, &result); err != nil {
		return nil
	}

	return result
}

// handleAPIError converts API error responses to typed errors
func (c *Client) handleAPIError(statusCode int, resp *APIResponse, body []byte) error {
	switch resp.ErrorType {
	case "two_factor_required":
		return ErrTwoFactorRequired
	case "challenge_required", "checkpoint_challenge_required", "checkpoint_required":
		return ErrChallengeRequired
	case "bad_password", "invalid_user":
		return ErrBadCredentials
	}

	if statusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	message := resp.Message
	if message == "" && resp.Status == "" {
		message = truncate(string(body), 200)
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		ErrorType:  resp.ErrorType,
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
