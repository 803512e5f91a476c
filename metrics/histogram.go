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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type Histogram interface {
	prometheus.Histogram
	// UpdateDuration observes the seconds elapsed since start.
	UpdateDuration(start time.Time)
	// SampleCount is the number of observations so far.
	SampleCount() uint64
	SampleSum() float64
}

type histogram struct {
	prometheus.Histogram
}

func (h *histogram) UpdateDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

func (h *histogram) snapshot() *dto.Histogram { return read(h).GetHistogram() }

func (h *histogram) SampleCount() uint64 { return h.snapshot().GetSampleCount() }

func (h *histogram) SampleSum() float64 { return h.snapshot().GetSampleSum() }
