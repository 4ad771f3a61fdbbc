package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/git-pkgs/pkghealth/client"
	"github.com/git-pkgs/pkghealth/internal/core"
)

var (
	reportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: client.MetricsNamespace,
		Subsystem: "rules",
		Name:      "reports_total",
		Help:      "Total number of reports created.",
	})

	issuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: client.MetricsNamespace,
		Subsystem: "rules",
		Name:      "issues_total",
		Help:      "Total number of issues raised, by category and type.",
	}, []string{"category", "type"})
)

func observe(issues []core.Issue) {
	reportsTotal.Inc()
	for _, is := range issues {
		issuesTotal.WithLabelValues(string(is.Category), string(is.Type)).Inc()
	}
}
