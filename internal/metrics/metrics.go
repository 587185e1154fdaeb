// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChallengesIssued counts challenges handed out
	ChallengesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "charon",
		Name:      "challenges_issued_total",
		Help:      "Number of authentication challenges issued.",
	})

	// Verifications counts verification attempts by outcome
	// (ok, no_challenge, expired, malformed, binding, signature, issuance)
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "charon",
		Name:      "verifications_total",
		Help:      "Number of signature verification attempts by outcome.",
	}, []string{"outcome"})
)
