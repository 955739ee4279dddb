package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

var errServerFailure = errors.New("server failure")

type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

type breakerRoundTripper struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerRoundTripper trips after MaxFailures consecutive transport errors or 5xx
// responses and rejects requests until OpenTimeout has passed. Build one per process
// and share it through WithRoundTripper.
func NewBreakerRoundTripper(next http.RoundTripper, s BreakerSettings) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return &breakerRoundTripper{next: next, cb: cb}
}

func (b *breakerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, nil
	})
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	return resp, err
}
