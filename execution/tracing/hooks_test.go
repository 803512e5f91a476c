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

package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	assert.Nil(t, Combine())
	assert.Nil(t, Combine(nil, nil))

	only := &Hooks{}
	assert.Same(t, only, Combine(nil, only))

	var calls []string
	first := &Hooks{
		OnExit:    func(depth int, _ []byte, _ uint64, _ error, _ bool) { calls = append(calls, "first exit") },
		OnSuspend: func(int, uint64) { calls = append(calls, "first suspend") },
	}
	second := &Hooks{
		OnExit:      func(depth int, _ []byte, _ uint64, _ error, _ bool) { calls = append(calls, "second exit") },
		OnGasChange: func(old, new uint64, reason GasChangeReason) { calls = append(calls, reason.String()) },
	}
	h := Combine(first, nil, second)
	require.NotNil(t, h)
	assert.Nil(t, h.OnEnter)
	assert.Nil(t, h.OnResume)

	h.OnExit(1, nil, 0, nil, false)
	h.OnSuspend(0, 10)
	h.OnGasChange(10, 3, GasChangeCallBaseCost)
	assert.Equal(t, []string{"first exit", "second exit", "first suspend", "base_cost"}, calls)
}
