/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tasklane/tasklane/internal/version"
)

const (
	namespace     = "tasklane"
	methodLabel   = "method"
	routeLabel    = "route"
	codeLabel     = "code"
	taskTypeLabel = "task_type"
	streamLabel   = "stream"
	resultLabel   = "result"
	eventLabel    = "event_type"
)

// Metrics manages the metric information that Tasklane is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion        *prometheus.GaugeVec
	serverHandledCounter *prometheus.CounterVec
	serverHandledSeconds *prometheus.HistogramVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
	watchConnectionsTotal     *prometheus.GaugeVec

	workspaceEventsTotal  *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	housekeepingRunsTotal *prometheus.CounterVec
	purgedInvitesTotal    prometheus.Counter
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		serverHandledCounter: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "server_handled_total",
			Help:      "Total number of HTTP requests completed on the server, regardless of success or failure.",
		}, []string{methodLabel, routeLabel, codeLabel}),
		serverHandledSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "server_handled_seconds",
			Help:      "The response time of HTTP requests, excluding live streams.",
		}, []string{routeLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
		watchConnectionsTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "connections_total",
			Help:      "The number of open live streams.",
		}, []string{streamLabel}),
		workspaceEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "events_total",
			Help:      "The total number of workspace membership events.",
		}, []string{eventLabel}),
		notificationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "The total number of notification deliveries by result.",
		}, []string{resultLabel}),
		housekeepingRunsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "runs_total",
			Help:      "The total number of housekeeping task runs by result.",
		}, []string{taskTypeLabel, resultLabel}),
		purgedInvitesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "purged_invites_total",
			Help:      "The total number of invites deleted by housekeeping.",
		}),
	}

	metrics.recordServerVersion()
	return metrics, nil
}

// recordServerVersion records the server version.
func (m *Metrics) recordServerVersion() {
	m.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)
}

// AddServerHandledCounter adds a counter for handled HTTP requests.
func (m *Metrics) AddServerHandledCounter(method, route, code string) {
	m.serverHandledCounter.With(prometheus.Labels{
		methodLabel: method,
		routeLabel:  route,
		codeLabel:   code,
	}).Inc()
}

// ObserveServerHandledSeconds records the response time of a request.
func (m *Metrics) ObserveServerHandledSeconds(route string, seconds float64) {
	m.serverHandledSeconds.With(prometheus.Labels{
		routeLabel: route,
	}).Observe(seconds)
}

// AddBackgroundGoroutines adds the number of goroutines attached by a
// particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a
// particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// AddWatchConnections counts an opened live stream.
func (m *Metrics) AddWatchConnections(stream string) {
	m.watchConnectionsTotal.With(prometheus.Labels{
		streamLabel: stream,
	}).Inc()
}

// RemoveWatchConnections counts a closed live stream.
func (m *Metrics) RemoveWatchConnections(stream string) {
	m.watchConnectionsTotal.With(prometheus.Labels{
		streamLabel: stream,
	}).Dec()
}

// AddWorkspaceEvent counts a committed membership event.
func (m *Metrics) AddWorkspaceEvent(eventType string) {
	m.workspaceEventsTotal.With(prometheus.Labels{
		eventLabel: eventType,
	}).Inc()
}

// AddNotifications adds n deliveries with the given result.
func (m *Metrics) AddNotifications(result string, n int) {
	m.notificationsTotal.With(prometheus.Labels{
		resultLabel: result,
	}).Add(float64(n))
}

// AddHousekeepingRun counts a run of a housekeeping task.
func (m *Metrics) AddHousekeepingRun(taskType, result string) {
	m.housekeepingRunsTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
		resultLabel:   result,
	}).Inc()
}

// AddPurgedInvites adds the number of invites deleted by housekeeping.
func (m *Metrics) AddPurgedInvites(n int) {
	m.purgedInvitesTotal.Add(float64(n))
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
