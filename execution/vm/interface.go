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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// IntraBlockState is the ledger the engine and its executors mutate. Reads can
// fail when the backing store does; such errors are fatal for the request.
// Every mutation must be undoable through RevertToSnapshot.
type IntraBlockState interface {
	Exist(addr common.Address) (bool, error)
	CreateAccount(addr common.Address, contractCreation bool)

	GetBalance(addr common.Address) (uint256.Int, error)
	AddBalance(addr common.Address, amount uint256.Int)
	SubBalance(addr common.Address, amount uint256.Int)

	GetNonce(addr common.Address) (uint64, error)
	SetNonce(addr common.Address, nonce uint64)

	GetCode(addr common.Address) ([]byte, error)
	GetCodeHash(addr common.Address) (common.Hash, error)
	SetCode(addr common.Address, code []byte)

	GetState(addr common.Address, key common.Hash) (uint256.Int, error)
	SetState(addr common.Address, key common.Hash, value uint256.Int)
	HasStorage(addr common.Address) (bool, error)

	// Snapshot returns an identifier for the current revision of the state.
	Snapshot() int
	// RevertToSnapshot drops every change made since the snapshot was taken.
	RevertToSnapshot(revid int)
}

// CanTransfer checks whether there are enough funds in the address' account to
// make a transfer.
func CanTransfer(ibs IntraBlockState, addr common.Address, amount *uint256.Int) (bool, error) {
	if amount == nil || amount.IsZero() {
		return true, nil
	}
	balance, err := ibs.GetBalance(addr)
	if err != nil {
		return false, err
	}
	return !balance.Lt(amount), nil
}

// Transfer subtracts amount from sender and adds amount to recipient.
func Transfer(ibs IntraBlockState, sender, recipient common.Address, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	ibs.SubBalance(sender, *amount)
	ibs.AddBalance(recipient, *amount)
}
