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

package main

import (
	"github.com/ethereum/go-ethereum/common"
	gethvm "github.com/ethereum/go-ethereum/core/vm"

	"github.com/erigontech/callexec/execution/vm"
)

// standardBuiltins binds the Cancun precompiles. Their interface is the same
// as vm.Builtin, so they are used as they are.
func standardBuiltins() *vm.BuiltinTable {
	contracts := make(map[common.Address]vm.Builtin, len(gethvm.PrecompiledContractsCancun))
	for addr, c := range gethvm.PrecompiledContractsCancun {
		contracts[addr] = c
	}
	return vm.NewBuiltinTable(contracts)
}
