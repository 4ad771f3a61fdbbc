package client

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all metrics.
	MetricsNamespace = "pkghealth"
	// MetricsSubsystemHTTPClient is the subsystem for upstream HTTP metrics.
	MetricsSubsystemHTTPClient = "http_client"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTPClient,
		Name:      "requests_total",
		Help:      "Total upstream requests by host and status code.",
	}, []string{"host", "code"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTPClient,
		Name:      "request_duration_seconds",
		Help:      "Duration of upstream requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host"})
)

type instrumentedTransport struct {
	next http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	upstreamDuration.WithLabelValues(req.URL.Host).Observe(time.Since(start).Seconds())

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	upstreamRequests.WithLabelValues(req.URL.Host, code).Inc()
	return resp, err
}
