// Package services holds the shared HTTP plumbing for the platform's
// backend APIs: the issuer and verifier interaction builders and the
// revocation store.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServiceError wraps a failure from a remote collaborator, preserving the
// original cause.
type ServiceError struct {
	Service string
	Op      string
	Status  int
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failed with status %d: %v", e.Service, e.Op, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Service, e.Op, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// Client is a JSON-over-HTTP client for one backend service.
type Client struct {
	service    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a client for a named service endpoint.
func NewClient(service, baseURL, apiKey string) *Client {
	return &Client{
		service: service,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logrus.WithField("service", service),
	}
}

// Post sends a JSON request body and decodes a JSON response into out.
// Non-2xx responses map to ServiceError carrying the response message.
func (c *Client) Post(ctx context.Context, op, path string, body, out interface{}, headers map[string]string) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return &ServiceError{Service: c.service, Op: op, Cause: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return &ServiceError{Service: c.service, Op: op, Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Warn("request failed")
		return &ServiceError{Service: c.service, Op: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{Service: c.service, Op: op, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{"op": op, "status": resp.StatusCode}).Warn("service returned error status")
		return &ServiceError{
			Service: c.service,
			Op:      op,
			Status:  resp.StatusCode,
			Cause:   fmt.Errorf("%s", serviceMessage(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &ServiceError{Service: c.service, Op: op, Status: resp.StatusCode, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// serviceMessage extracts the error message from a service error body,
// falling back to the raw body.
func serviceMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(body)
}
