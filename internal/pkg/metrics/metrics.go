// Package metrics exposes the prometheus collectors for the matching workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "items_created_total",
		Help:      "Item reports persisted, by status.",
	}, []string{"status"})

	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "matches_created_total",
		Help:      "Matches materialized above the confidence threshold.",
	})

	CandidatesScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "match_candidates_scored_total",
		Help:      "Opposing items scored during match generation.",
	})

	MatchGenerationDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "match_generation_degraded_total",
		Help:      "Match generation runs that aborted and returned no matches.",
	})

	MatchStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "match_status_changes_total",
		Help:      "Accepted match status updates, by target status.",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})
)
