package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout       = 20 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = 200 * time.Millisecond
	userAgent            = "traveltime-tiles/1.0"
)

// HTTPStatusError reports a non-2xx upstream response.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// httpClient is the transport shared by all backend clients.
type httpClient struct {
	session       *http.Client
	maxRetries    uint64
	retryInterval time.Duration
}

func newHTTPClient(timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpClient{
		session:       &http.Client{Timeout: timeout},
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
}

func (c *httpClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *httpClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &HTTPStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff while respecting context cancellation.
func (c *httpClient) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	return backoff.RetryWithData(func() (*http.Response, error) {
		req, err := makeReq()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("make request: %w", err))
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		if isRetryable(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, b)
}

// doJSON runs the request with retries and decodes the JSON body into out.
func (c *httpClient) doJSON(
	ctx context.Context,
	makeReq func() (*http.Request, error),
	out any,
) error {
	resp, err := c.doWithRetry(ctx, makeReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var he *HTTPStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
