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

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDetectInstructionSet(t *testing.T) {
	assert.Equal(t, EVMInstructions, DetectInstructionSet(nil))
	assert.Equal(t, EVMInstructions, DetectInstructionSet([]byte{0x60, 0x00}))
	assert.Equal(t, WasmInstructions, DetectInstructionSet([]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00, 0xff}))
	assert.Equal(t, InvalidInstructions, DetectInstructionSet([]byte{0x00, 'a', 's', 'm', 0x02, 0x00, 0x00, 0x00}))
	assert.Equal(t, InvalidInstructions, DetectInstructionSet([]byte{0x00, 'a', 's', 'm'}))
}

func TestFactoryExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	evm := NewMockExecutor(ctrl)
	f := NewFactory(evm, nil)

	p := &ActionParams{Code: []byte{0x60}}
	e, set, err := f.Executor(p)
	require.NoError(t, err)
	assert.Equal(t, EVMInstructions, set)
	assert.Same(t, evm, e)
	assert.Equal(t, 1, f.cache.Len())

	_, set, err = f.Executor(&ActionParams{Code: []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}})
	require.ErrorIs(t, err, ErrUnknownInstructionSet)
	assert.Equal(t, WasmInstructions, set)

	// the cached answer wins for the same hash
	cached := &ActionParams{Code: []byte{0x00, 'a', 's', 'm'}}
	hash := p.CodeHash()
	cached.SetCode(cached.Code, &hash)
	_, set, err = f.Executor(cached)
	require.NoError(t, err)
	assert.Equal(t, EVMInstructions, set)
}
