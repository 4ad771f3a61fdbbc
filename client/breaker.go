package client

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// errServerStatus marks a 5xx response as a breaker failure while the
// response itself is still handed back to the caller.
var errServerStatus = errors.New("upstream server error")

// breakerTransport wraps a RoundTripper with one circuit breaker per host.
type breakerTransport struct {
	next      http.RoundTripper
	threshold int64
	breakers  map[string]*circuit.Breaker
	mu        sync.RWMutex
}

func newBreakerTransport(next http.RoundTripper, threshold int64) *breakerTransport {
	return &breakerTransport{
		next:      next,
		threshold: threshold,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

// breaker returns or creates the circuit breaker for host.
func (t *breakerTransport) breaker(host string) *circuit.Breaker {
	t.mu.RLock()
	b, exists := t.breakers[host]
	t.mu.RUnlock()
	if exists {
		return b
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if b, exists := t.breakers[host]; exists {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(t.threshold),
	})
	t.breakers[host] = b
	return b
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	b := t.breaker(host)

	if !b.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var resp *http.Response
	err := b.Call(func() error {
		var rtErr error
		resp, rtErr = t.next.RoundTrip(req)
		if rtErr != nil {
			return rtErr
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return errServerStatus
		}
		return nil
	}, 0)

	switch {
	case errors.Is(err, errServerStatus):
		return resp, nil
	case err != nil:
		return nil, err
	}
	return resp, nil
}

func (t *breakerTransport) state() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]string, len(t.breakers))
	for host, b := range t.breakers {
		if b.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
