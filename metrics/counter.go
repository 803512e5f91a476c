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
	"github.com/prometheus/client_golang/prometheus"
)

type Counter interface {
	prometheus.Counter
	ValueGetter
	// AddUint64 is exact up to 2^53, enough for gas totals.
	AddUint64(v uint64)
}

type counter struct {
	prometheus.Counter
}

func (c *counter) GetValue() float64 { return read(c).GetCounter().GetValue() }

func (c *counter) GetValueUint64() uint64 { return uint64(c.GetValue()) }

func (c *counter) AddUint64(v uint64) { c.Add(float64(v)) }
