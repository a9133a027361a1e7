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

package dataflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	varAllocatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "dataflow",
			Name:      "variables_allocated_total",
			Help:      "The number of dataflow variables allocated.",
		}, []string{"name"})
	varResolvedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "dataflow",
			Name:      "resolutions_total",
			Help:      "The number of bind and fail attempts by result.",
		}, []string{"name", "result"})
	readSuspendedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorflow",
			Subsystem: "dataflow",
			Name:      "suspended_reads_total",
			Help:      "The number of reads that found an unbound variable and registered a waiter.",
		}, []string{"name"})
)

// InitMetrics registers all metrics in this file
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(varAllocatedCounter)
	registry.MustRegister(varResolvedCounter)
	registry.MustRegister(readSuspendedCounter)
}
