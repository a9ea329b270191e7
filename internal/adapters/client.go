// Package adapters holds the clients for the external providers the scorer
// depends on: embeddings, grammar checking and summary generation.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"
)

// HealthRecorder receives the outcome of every provider call.
// resilience.DegradationManager satisfies it.
type HealthRecorder interface {
	RecordOutcome(service string, err error)
}

// ClientOption configures an adapter
type ClientOption func(*clientDeps)

type clientDeps struct {
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *monitoring.Logger
	health     HealthRecorder
}

// WithHTTPClient replaces the adapter's HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(d *clientDeps) { d.httpClient = c }
}

// WithBreaker guards the adapter's calls with a circuit breaker
func WithBreaker(cb *resilience.CircuitBreaker) ClientOption {
	return func(d *clientDeps) { d.breaker = cb }
}

// WithLogger sets the adapter's logger
func WithLogger(l *monitoring.Logger) ClientOption {
	return func(d *clientDeps) { d.logger = l }
}

// WithHealth reports call outcomes to a health tracker
func WithHealth(h HealthRecorder) ClientOption {
	return func(d *clientDeps) { d.health = h }
}

func newClientDeps(service string, timeout time.Duration, opts []ClientOption) clientDeps {
	d := clientDeps{}
	for _, opt := range opts {
		opt(&d)
	}
	if d.httpClient == nil {
		d.httpClient = &http.Client{Timeout: timeout}
	}
	if d.breaker == nil {
		d.breaker = resilience.NewCircuitBreaker(service, resilience.CircuitBreakerConfig{})
	}
	if d.logger == nil {
		d.logger = monitoring.NewNopLogger()
	}
	return d
}

// call runs fn behind the breaker, then logs and reports the outcome
func (d clientDeps) call(ctx context.Context, service, endpoint string, fn func(context.Context) error) error {
	start := time.Now()
	err := d.breaker.Execute(ctx, fn)
	d.logger.ExternalAPILogger(service, endpoint, time.Since(start), err)
	if d.health != nil {
		d.health.RecordOutcome(service, err)
	}
	return err
}

// doJSON sends req and decodes a 2xx JSON body into out. Other statuses
// become *resilience.HTTPError.
func doJSON(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resilience.NewHTTPError(resp.StatusCode, string(body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
