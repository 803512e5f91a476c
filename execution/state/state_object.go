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

package state

import (
	"maps"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var emptyCodeHash = crypto.Keccak256Hash(nil)

// Account is the consensus view of an account.
type Account struct {
	Nonce    uint64
	Balance  uint256.Int
	CodeHash common.Hash // zero or emptyCodeHash when there is no code
}

func (a *Account) hasCode() bool {
	return a.CodeHash != (common.Hash{}) && a.CodeHash != emptyCodeHash
}

// stateObject represents an account which is being modified.
type stateObject struct {
	address common.Address
	data    Account

	code       []byte
	codeLoaded bool

	// storage caches slots read from the reader and holds dirty ones.
	storage map[common.Hash]uint256.Int
	// fresh objects were (re)created in this state and never consult the
	// reader for storage.
	fresh bool
	// createdContract is set when the account was created by a create frame.
	createdContract bool
}

func newObject(address common.Address, data *Account) *stateObject {
	so := &stateObject{
		address: address,
		storage: map[common.Hash]uint256.Int{},
	}
	if data != nil {
		so.data = *data
	}
	return so
}

func (so *stateObject) deepCopy() *stateObject {
	cpy := *so
	cpy.code = common.CopyBytes(so.code)
	cpy.storage = maps.Clone(so.storage)
	return &cpy
}

func (so *stateObject) setBalance(amount uint256.Int) { so.data.Balance = amount }

func (so *stateObject) setNonce(nonce uint64) { so.data.Nonce = nonce }

func (so *stateObject) setCode(codeHash common.Hash, code []byte) {
	so.code = code
	so.codeLoaded = true
	so.data.CodeHash = codeHash
}

func (so *stateObject) setState(key common.Hash, value uint256.Int) { so.storage[key] = value }

// dirtyStorage reports whether a non-zero slot lives in memory.
func (so *stateObject) dirtyStorage() bool {
	for _, v := range so.storage {
		if !v.IsZero() {
			return true
		}
	}
	return false
}
