// Copyright 2026 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Set is a set of metrics backed by its own Prometheus registry. Metrics are
// keyed by their full name including labels.
type Set struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

func NewSet() *Set {
	return &Set{
		registry: prometheus.NewRegistry(),
		metrics:  map[string]prometheus.Collector{},
	}
}

var defaultSet = NewSet()

// DefaultSet returns the process wide set used by the package level helpers.
func DefaultSet() *Set { return defaultSet }

func (s *Set) GetOrCreateCounter(name string) (Counter, error) {
	c, err := s.getOrCreate(name, func(fullName string, labels prometheus.Labels) prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: fullName, ConstLabels: labels})
	})
	if err != nil {
		return nil, err
	}
	pc, ok := c.(prometheus.Counter)
	if !ok {
		return nil, fmt.Errorf("metric %q is not a counter", name)
	}
	return &counter{pc}, nil
}

func (s *Set) GetOrCreateGauge(name string) (Gauge, error) {
	c, err := s.getOrCreate(name, func(fullName string, labels prometheus.Labels) prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: fullName, ConstLabels: labels})
	})
	if err != nil {
		return nil, err
	}
	pg, ok := c.(prometheus.Gauge)
	if !ok {
		return nil, fmt.Errorf("metric %q is not a gauge", name)
	}
	return &gauge{pg}, nil
}

// GetOrCreateHistogram uses buckets only when the histogram does not exist
// yet. No buckets selects prometheus.DefBuckets.
func (s *Set) GetOrCreateHistogram(name string, buckets ...float64) (Histogram, error) {
	c, err := s.getOrCreate(name, func(fullName string, labels prometheus.Labels) prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: fullName, ConstLabels: labels, Buckets: buckets})
	})
	if err != nil {
		return nil, err
	}
	ph, ok := c.(prometheus.Histogram)
	if !ok {
		return nil, fmt.Errorf("metric %q is not a histogram", name)
	}
	return &histogram{ph}, nil
}

func (s *Set) getOrCreate(name string, create func(string, prometheus.Labels) prometheus.Collector) (prometheus.Collector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.metrics[name]; ok {
		return c, nil
	}
	fullName, labels, err := parseMetric(name)
	if err != nil {
		return nil, err
	}
	c := create(fullName, labels)
	if err := s.registry.Register(c); err != nil {
		return nil, fmt.Errorf("registering %q: %w", name, err)
	}
	s.metrics[name] = c
	return c, nil
}

// WritePrometheus writes every metric of the set in the Prometheus text
// exposition format.
func (s *Set) WritePrometheus(w io.Writer) error {
	families, err := s.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
