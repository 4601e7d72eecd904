// Package metrics exposes Prometheus counters for authentication events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the session and federation layers report to.
type Recorder interface {
	RecordLogin(result string)
	RecordRefresh(result string)
	RecordResolve(outcome string)
	RecordRevocation(purpose string)
	RecordFederation(provider, result string)
}

// Collector records authentication events as Prometheus counters.
type Collector struct {
	logins      *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	resolves    *prometheus.CounterVec
	revocations *prometheus.CounterVec
	federations *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_logins_total",
			Help: "Password logins by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_refreshes_total",
			Help: "Explicit access token refreshes by result.",
		}, []string{"result"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_session_resolves_total",
			Help: "Cookie session resolutions by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_revocations_total",
			Help: "Tokens revoked by purpose.",
		}, []string{"purpose"}),
		federations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_federated_logins_total",
			Help: "Federated logins by provider and result.",
		}, []string{"provider", "result"}),
	}

	reg.MustRegister(
		c.logins,
		c.refreshes,
		c.resolves,
		c.revocations,
		c.federations,
	)

	return c
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordRefresh(result string) {
	c.refreshes.WithLabelValues(result).Inc()
}

func (c *Collector) RecordResolve(outcome string) {
	c.resolves.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRevocation(purpose string) {
	c.revocations.WithLabelValues(purpose).Inc()
}

func (c *Collector) RecordFederation(provider, result string) {
	c.federations.WithLabelValues(provider, result).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordLogin(string)              {}
func (Nop) RecordRefresh(string)            {}
func (Nop) RecordResolve(string)            {}
func (Nop) RecordRevocation(string)         {}
func (Nop) RecordFederation(string, string) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
