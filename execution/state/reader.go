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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// StateReader is the committed state underneath an IntraBlockState.
type StateReader interface {
	// ReadAccountData returns nil for accounts that do not exist.
	ReadAccountData(address common.Address) (*Account, error)
	ReadAccountCode(address common.Address, codeHash common.Hash) ([]byte, error)
	ReadAccountStorage(address common.Address, key common.Hash) (uint256.Int, error)
	HasStorage(address common.Address) (bool, error)
}

// GenesisAccount is an account in the initial state.
type GenesisAccount struct {
	Balance *uint256.Int                `toml:"balance"`
	Nonce   uint64                      `toml:"nonce"`
	Code    []byte                      `toml:"code"`
	Storage map[common.Hash]common.Hash `toml:"storage"`
}

// GenesisAlloc specifies the initial state.
type GenesisAlloc map[common.Address]GenesisAccount

// MemoryReader serves a GenesisAlloc. It is never written to and may be shared.
type MemoryReader struct {
	accounts map[common.Address]*Account
	code     map[common.Hash][]byte
	storage  map[common.Address]map[common.Hash]uint256.Int
}

func NewMemoryReader(alloc GenesisAlloc) *MemoryReader {
	r := &MemoryReader{
		accounts: make(map[common.Address]*Account, len(alloc)),
		code:     map[common.Hash][]byte{},
		storage:  map[common.Address]map[common.Hash]uint256.Int{},
	}
	for addr, ga := range alloc {
		acc := &Account{Nonce: ga.Nonce, CodeHash: emptyCodeHash}
		if ga.Balance != nil {
			acc.Balance.Set(ga.Balance)
		}
		if len(ga.Code) > 0 {
			acc.CodeHash = crypto.Keccak256Hash(ga.Code)
			r.code[acc.CodeHash] = common.CopyBytes(ga.Code)
		}
		if len(ga.Storage) > 0 {
			slots := make(map[common.Hash]uint256.Int, len(ga.Storage))
			for k, v := range ga.Storage {
				var value uint256.Int
				value.SetBytes32(v[:])
				slots[k] = value
			}
			r.storage[addr] = slots
		}
		r.accounts[addr] = acc
	}
	return r
}

func (r *MemoryReader) ReadAccountData(address common.Address) (*Account, error) {
	acc, ok := r.accounts[address]
	if !ok {
		return nil, nil
	}
	cpy := *acc
	return &cpy, nil
}

func (r *MemoryReader) ReadAccountCode(_ common.Address, codeHash common.Hash) ([]byte, error) {
	return common.CopyBytes(r.code[codeHash]), nil
}

func (r *MemoryReader) ReadAccountStorage(address common.Address, key common.Hash) (uint256.Int, error) {
	return r.storage[address][key], nil
}

func (r *MemoryReader) HasStorage(address common.Address) (bool, error) {
	for _, v := range r.storage[address] {
		if !v.IsZero() {
			return true, nil
		}
	}
	return false, nil
}
