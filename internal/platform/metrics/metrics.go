// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus counters for the account flows.

A private registry is used instead of the global default so tests can build
as many instances as they need.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels.
const (
	OperationRegister = "register"
	OperationLogin    = "login"
)

// Metrics holds the application registry and its counters.
type Metrics struct {
	registry     *prometheus.Registry
	authAttempts *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// auth attempt counter.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rendezvous_auth_attempts_total",
			Help: "Total number of register and login attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)
	registry.MustRegister(authAttempts)

	return &Metrics{registry: registry, authAttempts: authAttempts}
}

// ObserveRegister counts one registration attempt.
func (m *Metrics) ObserveRegister(outcome string) {
	m.authAttempts.WithLabelValues(OperationRegister, outcome).Inc()
}

// ObserveLogin counts one login attempt.
func (m *Metrics) ObserveLogin(outcome string) {
	m.authAttempts.WithLabelValues(OperationLogin, outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
