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
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DumpAccount represents an account in the state.
type DumpAccount struct {
	Balance  string                      `json:"balance"`
	Nonce    uint64                      `json:"nonce"`
	CodeHash common.Hash                 `json:"codeHash"`
	Code     hexutil.Bytes               `json:"code,omitempty"`
	Storage  map[common.Hash]common.Hash `json:"storage,omitempty"`
	Created  bool                        `json:"created,omitempty"`
}

// Dump returns every account touched so far with the storage slots known in
// memory. Zero slots are left out.
func (sdb *IntraBlockState) Dump() map[common.Address]DumpAccount {
	dump := make(map[common.Address]DumpAccount, len(sdb.stateObjects))
	for addr, obj := range sdb.stateObjects {
		acc := DumpAccount{
			Balance:  obj.data.Balance.Dec(),
			Nonce:    obj.data.Nonce,
			CodeHash: obj.data.CodeHash,
			Created:  obj.createdContract,
		}
		if obj.codeLoaded {
			acc.Code = common.CopyBytes(obj.code)
		}
		for k, v := range obj.storage {
			if v.IsZero() {
				continue
			}
			if acc.Storage == nil {
				acc.Storage = map[common.Hash]common.Hash{}
			}
			acc.Storage[k] = v.Bytes32()
		}
		dump[addr] = acc
	}
	return dump
}
