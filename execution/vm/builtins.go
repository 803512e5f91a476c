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
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

// Builtin is the basic interface for natively implemented contracts bound to
// a fixed address. Builtins are atomic: they cannot issue nested calls.
type Builtin interface {
	RequiredGas(input []byte) uint64  // RequiredGas calculates the contract gas use
	Run(input []byte) ([]byte, error) // Run runs the builtin contract
}

// BuiltinFunc adapts a fixed price and a plain function to Builtin.
type BuiltinFunc struct {
	Gas uint64
	Fn  func(input []byte) ([]byte, error)
}

func (b BuiltinFunc) RequiredGas([]byte) uint64 { return b.Gas }

func (b BuiltinFunc) Run(input []byte) ([]byte, error) { return b.Fn(input) }

// BuiltinTable maps addresses to builtins. It is built once at start-up and
// never changes afterwards, so it can be shared between executives.
type BuiltinTable struct {
	contracts map[common.Address]Builtin
	addresses mapset.Set[common.Address]
}

// NewBuiltinTable copies contracts into a new immutable table.
func NewBuiltinTable(contracts map[common.Address]Builtin) *BuiltinTable {
	t := &BuiltinTable{
		contracts: make(map[common.Address]Builtin, len(contracts)),
		addresses: mapset.NewThreadUnsafeSetWithSize[common.Address](len(contracts)),
	}
	for addr, b := range contracts {
		if b == nil {
			continue
		}
		t.contracts[addr] = b
		t.addresses.Add(addr)
	}
	return t
}

// Lookup returns the builtin bound to addr. A nil table has no builtins.
func (t *BuiltinTable) Lookup(addr common.Address) (Builtin, bool) {
	if t == nil {
		return nil, false
	}
	b, ok := t.contracts[addr]
	return b, ok
}

// Addresses returns a copy of the bound address set.
func (t *BuiltinTable) Addresses() mapset.Set[common.Address] {
	if t == nil {
		return mapset.NewThreadUnsafeSet[common.Address]()
	}
	return t.addresses.Clone()
}

func (t *BuiltinTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.contracts)
}

// RunBuiltin charges the builtin's price and runs it. Builtin panics are
// reported as dispatch errors rather than crashing the request. A rejected
// input reports the gas left after the charge; whether the caller gets it
// back is decided by the refund policy.
func RunBuiltin(b Builtin, input []byte, gas uint64) (out *Outcome) {
	gasCost := b.RequiredGas(input)
	if gas < gasCost {
		return Failure(ErrOutOfGas, 0)
	}
	gas -= gasCost

	defer func() {
		if r := recover(); r != nil {
			out = Failure(fmt.Errorf("%w: internal error: %v", ErrBuiltinDispatch, r), gas)
		}
	}()
	ret, err := b.Run(input)
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrBuiltinDispatch, err), gas)
	}
	return Success(ret, gas)
}
