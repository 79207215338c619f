package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"storybook-pipeline/application/ports/outbound"
)

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, error)
}

type contentFetcher struct {
	client     *http.Client
	logger     outbound.LoggerPort
	maxRetries int
	retryDelay time.Duration
}

func NewContentFetcher(logger outbound.LoggerPort) ContentFetcher {
	return &contentFetcher{
		client:     &http.Client{Timeout: 90 * time.Second},
		logger:     logger,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// FetchContent executes the request and returns the response body. Rate-limit
// responses are retried with linear backoff; any other non-OK status fails.
func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
		}

		payload, status, err := c.doRequest(req)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if status != http.StatusTooManyRequests {
			return nil, err
		}
		c.logger.WarnWithFields("rate limited, retrying", map[string]interface{}{
			"url":     req.URL.String(),
			"attempt": attempt + 1,
		})
	}
	return nil, lastErr
}

func (c *contentFetcher) doRequest(req *http.Request) ([]byte, int, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "failed to send HTTP request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL.String(),
		})
		return nil, 0, err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Error(closeErr, "failed to close response body")
		}
	}()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.ErrorWithFields(err, "failed to read response body", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL.String(),
		})
		return nil, res.StatusCode, err
	}

	if res.StatusCode != http.StatusOK {
		c.logger.ErrorWithFields(nil, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL.String(),
			"status":  res.StatusCode,
			"message": string(payload),
		})
		return nil, res.StatusCode, fmt.Errorf("HTTP request returned non-OK status code: %d", res.StatusCode)
	}

	return payload, res.StatusCode, nil
}

// imageFetcher downloads images for reference-image capture.
type imageFetcher struct {
	ContentFetcher
}

func NewImageFetcher(fetcher ContentFetcher) outbound.ImageFetcherPort {
	return &imageFetcher{ContentFetcher: fetcher}
}

func (f *imageFetcher) FetchBase64(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	payload, err := f.FetchContent(req)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}
