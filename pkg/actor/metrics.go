// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package actor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	totalWorkers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "number_of_workers",
			Help:      "The total number of workers in an actor system.",
		}, []string{"name"})
	workingWorkers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "number_of_working_workers",
			Help:      "The number of working workers in an actor system.",
		}, []string{"name"})
	workingDuration = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "workers_cpu_seconds_total",
			Help:      "Total working time spent in seconds.",
		}, []string{"name"})
	slowStepCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "slow_steps_total",
			Help:      "The number of actor steps slower than the configured threshold.",
		}, []string{"name"})
	liveActors = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "number_of_actors",
			Help:      "The number of live actors in an actor system.",
		}, []string{"name"})
	spawnedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "spawned_total",
			Help:      "The number of spawned actors.",
		}, []string{"name"})
	messageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "messages_total",
			Help:      "The number of messages served, by type and result.",
		}, []string{"name", "type", "result"})
	deadLetterCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "actor",
			Name:      "dead_letters_total",
			Help:      "The number of messages that could not be delivered or handled.",
		}, []string{"name"})
)

// InitMetrics registers all metrics in this file
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(totalWorkers)
	registry.MustRegister(workingWorkers)
	registry.MustRegister(workingDuration)
	registry.MustRegister(slowStepCounter)
	registry.MustRegister(liveActors)
	registry.MustRegister(spawnedCounter)
	registry.MustRegister(messageCounter)
	registry.MustRegister(deadLetterCounter)
}
