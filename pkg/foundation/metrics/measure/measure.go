// Copyright © 2024 Meroxa, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package measure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Any changes in metrics defined below should also be reflected in the
// Collectors list.
var (
	TeknekInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "teknek_info",
		Help: "Information about teknek.",
	}, []string{"version"})

	NodesCompiledCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teknek_compiler_nodes_total",
		Help: "Number of execution tree nodes compiled by plan name.",
	}, []string{"plan_name"})
	ResolutionFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teknek_compiler_resolution_failures_total",
		Help: "Number of components that could not be resolved by component kind (operator, offset storage).",
	}, []string{"kind"})
	OffsetsRecoveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teknek_compiler_offsets_recovered_total",
		Help: "Number of partitions seeded with a persisted offset by plan name.",
	}, []string{"plan_name"})
	CompileDurationTimer = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teknek_compiler_compile_duration_seconds",
		Help:    "Amount of time spent compiling a plan for one partition.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"plan_name"})

	TuplesProcessedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teknek_driver_tuples_total",
		Help: "Number of tuples read from a partition by plan name.",
	}, []string{"plan_name"})
	TupleRetriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teknek_driver_tuple_retries_total",
		Help: "Number of times an operator was retried for a tuple by plan name.",
	}, []string{"plan_name"})
)

// Collectors returns all teknek metrics.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		TeknekInfo,
		NodesCompiledCounter,
		ResolutionFailuresCounter,
		OffsetsRecoveredCounter,
		CompileDurationTimer,
		TuplesProcessedCounter,
		TupleRetriesCounter,
	}
}

// NewRegistry returns a prometheus registry with all teknek metrics
// registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(Collectors()...)
	return reg
}
