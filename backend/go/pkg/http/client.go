package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"ecofix/backend/go/internal/config"
	"ecofix/backend/go/pkg/circuitbreaker"
)

// DefaultTimeout bounds a single outbound request.
const DefaultTimeout = 30 * time.Second

// ServerError marks a response with a 5xx status. The response itself is still
// returned to the caller; the error only feeds the circuit breaker.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: received status code %d", e.StatusCode)
}

// BreakerTransport is an http.RoundTripper guarded by a circuit breaker.
// Transport errors and status codes >= 500 count as failures.
type BreakerTransport struct {
	Base    http.RoundTripper
	Breaker *circuitbreaker.Breaker
}

// RoundTrip implements http.RoundTripper.
func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Breaker == nil {
		return base.RoundTrip(req)
	}

	var resp *http.Response
	err := t.Breaker.Execute(func() error {
		var err error
		resp, err = base.RoundTrip(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return &ServerError{StatusCode: resp.StatusCode}
		}
		return nil
	})

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// NewClient creates an *http.Client whose transport is protected by a circuit breaker
// when cfg.Enabled is set. name identifies the dependency in breaker callbacks.
func NewClient(name string, cfg config.CircuitBreakerConfig, onStateChange func(name string, from, to circuitbreaker.State)) (*http.Client, error) {
	if !cfg.Enabled {
		return &http.Client{Timeout: DefaultTimeout}, nil
	}

	breaker, err := NewBreaker(name, cfg, onStateChange)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: &BreakerTransport{Base: http.DefaultTransport, Breaker: breaker},
	}, nil
}

// NewBreaker initializes a circuit breaker based on the configuration.
func NewBreaker(name string, cfg config.CircuitBreakerConfig, onStateChange func(name string, from, to circuitbreaker.State)) (*circuitbreaker.Breaker, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return circuitbreaker.New(circuitbreaker.Settings{
		Name:             name,
		FailureThreshold: cfg.FailureThreshold,
		SuccessThreshold: cfg.SuccessThreshold,
		Timeout:          timeout,
		OnStateChange:    onStateChange,
	}), nil
}
