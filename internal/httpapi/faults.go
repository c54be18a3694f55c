package httpapi

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/example/talentflow/internal/metrics"
)

// FaultPolicy describes the simulated unreliability applied to one route:
// a failure probability and a uniform artificial latency range.
type FaultPolicy struct {
	Rate     float64
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Named policies applied by the router. Reads stay mostly reliable; writes
// fail often enough to exercise client-side rollback, with the board reorder
// the flakiest of all.
const (
	PolicyRead    = "read"
	PolicyWrite   = "write"
	PolicyReorder = "reorder"
	PolicyAuth    = "auth"
)

// DefaultPolicies returns the stock policy table.
func DefaultPolicies() map[string]FaultPolicy {
	return map[string]FaultPolicy{
		PolicyRead:    {Rate: 0.01, MinDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond},
		PolicyWrite:   {Rate: 0.05, MinDelay: 200 * time.Millisecond, MaxDelay: 1000 * time.Millisecond},
		PolicyReorder: {Rate: 0.075, MinDelay: 500 * time.Millisecond, MaxDelay: 1000 * time.Millisecond},
		PolicyAuth:    {Rate: 0.001, MinDelay: 100 * time.Millisecond, MaxDelay: 400 * time.Millisecond},
	}
}

// FaultInjector injects artificial latency and failures ahead of handlers.
// All randomness flows through one seeded source, so a fixed seed produces a
// reproducible fault sequence.
type FaultInjector struct {
	enabled   bool
	policies  map[string]FaultPolicy
	metrics   *metrics.Metrics
	responder responder
	logger    *slog.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(time.Duration)
}

// NewFaultInjector creates an injector. A zero seed derives one from the
// clock; nil policies fall back to DefaultPolicies.
func NewFaultInjector(enabled bool, seed int64, policies map[string]FaultPolicy, m *metrics.Metrics, logger *slog.Logger) *FaultInjector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if policies == nil {
		policies = DefaultPolicies()
	}
	base := defaultLogger(logger)
	return &FaultInjector{
		enabled:   enabled,
		policies:  policies,
		metrics:   m,
		responder: newResponder(base),
		logger:    base,
		rng:       rand.New(rand.NewSource(seed)),
		sleep:     time.Sleep,
	}
}

// Wrap applies the named policy to a handler. Unknown policy names and a
// disabled injector pass the request straight through.
func (fi *FaultInjector) Wrap(route, policyName string, next http.HandlerFunc) http.HandlerFunc {
	if fi == nil || !fi.enabled {
		return next
	}
	policy, ok := fi.policies[policyName]
	if !ok {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		delay, failed := fi.roll(policy)

		// Deliberately not cancellable: the latency simulates a slow
		// upstream that does not observe the caller going away.
		if delay > 0 {
			fi.sleep(delay)
		}

		if failed {
			if fi.metrics != nil {
				fi.metrics.FaultsInjected.WithLabelValues(route).Inc()
			}
			ctx := r.Context()
			fi.responder.loggerFor(ctx).WarnContext(ctx, "fault injected",
				"route", route, "policy", policyName, "delay", delay)
			fi.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
				Message: "a simulated upstream failure occurred, please retry",
				Error:   "injected_fault",
			})
			return
		}

		next(w, r)
	}
}

// roll draws a delay and failure decision under the injector's lock.
func (fi *FaultInjector) roll(policy FaultPolicy) (time.Duration, bool) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	delay := policy.MinDelay
	if spread := policy.MaxDelay - policy.MinDelay; spread > 0 {
		delay += time.Duration(fi.rng.Int63n(int64(spread)))
	}

	failed := policy.Rate > 0 && fi.rng.Float64() < policy.Rate
	return delay, failed
}
