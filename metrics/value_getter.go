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

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// ValueGetter reads back the current value of a counter or gauge.
type ValueGetter interface {
	GetValue() float64
	GetValueUint64() uint64
}

// read collects the current state of a single metric.
func read(c prometheus.Metric) *dto.Metric {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		panic(fmt.Errorf("reading invalid metric %s: %w", c.Desc(), err))
	}
	return &m
}
