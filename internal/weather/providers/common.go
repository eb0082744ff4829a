package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cloudcast/internal/weather"
)

var errNoHTTPClient = errors.New("http client not configured")

// newBreaker builds the circuit breaker guarding one upstream. Only
// availability failures count against it: a wrong key or an unknown city says
// nothing about the health of the service.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, weather.ErrServiceUnavailable)
		},
	})
}

// getJSON performs a single GET through the circuit breaker and decodes the
// JSON body into out. Retrying is left to the caller.
func getJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, rawURL string, out any) error {
	if client == nil {
		return errNoHTTPClient
	}

	_, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", weather.ErrServiceUnavailable, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrServiceUnavailable, err)
		}
		defer resp.Body.Close()

		if err := statusError(resp.StatusCode); err != nil {
			return nil, err
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", weather.ErrServiceUnavailable, err)
		}
		return nil, nil
	})

	// If circuit is open, report the service as unavailable without I/O.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", weather.ErrServiceUnavailable, err)
	}
	return err
}

// statusError maps an HTTP status code onto the weather error taxonomy.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return weather.ErrInvalidCredential
	case code == http.StatusNotFound:
		return weather.ErrLocationNotFound
	default:
		return fmt.Errorf("%w: unexpected status code %d", weather.ErrServiceUnavailable, code)
	}
}
