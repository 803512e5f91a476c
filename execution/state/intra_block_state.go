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

// Package state provides an in-memory, journalled IntraBlockState for the
// call/create engine.
package state

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

type revision struct {
	id           int
	journalIndex int
}

// IntraBlockState is responsible for caching and managing state changes
// that occur during block's execution.
// NOT THREAD SAFE!
type IntraBlockState struct {
	stateReader StateReader

	// This map holds 'live' objects, which will get modified while processing a state transition.
	stateObjects map[common.Address]*stateObject

	// DB error.
	// State objects are used by the consensus core and VM which are
	// unable to deal with database-level errors. Any error that occurs
	// during a database read is memoized here and will eventually be returned
	// by IntraBlockState.Error.
	savedErr error

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

// New creates a new state from a given reader
func New(stateReader StateReader) *IntraBlockState {
	return &IntraBlockState{
		stateReader:  stateReader,
		stateObjects: map[common.Address]*stateObject{},
		journal:      newJournal(),
	}
}

// NewFromAlloc is New over a MemoryReader.
func NewFromAlloc(alloc GenesisAlloc) *IntraBlockState {
	return New(NewMemoryReader(alloc))
}

// Release gives the journal back to the pool; the state must not be used
// afterwards.
func (sdb *IntraBlockState) Release() {
	if sdb.journal != nil {
		sdb.journal.release()
		sdb.journal = nil
	}
}

// setErrorUnsafe sets error but should be called in medhods that already have locks
func (sdb *IntraBlockState) setErrorUnsafe(err error) {
	if sdb.savedErr == nil {
		sdb.savedErr = err
	}
}

// Error returns the first read error hit by a method that cannot report it.
func (sdb *IntraBlockState) Error() error {
	return sdb.savedErr
}

// getStateObject retrieves a state object given by the address, or nil if the
// account does not exist.
func (sdb *IntraBlockState) getStateObject(addr common.Address) (*stateObject, error) {
	if obj, ok := sdb.stateObjects[addr]; ok {
		return obj, nil
	}
	account, err := sdb.stateReader.ReadAccountData(addr)
	if err != nil {
		return nil, fmt.Errorf("reading account %x: %w", addr, err)
	}
	if account == nil {
		return nil, nil
	}
	obj := newObject(addr, account)
	sdb.stateObjects[addr] = obj
	return obj, nil
}

// getOrNewStateObject is used by the mutators; read errors are memoized.
func (sdb *IntraBlockState) getOrNewStateObject(addr common.Address) *stateObject {
	obj, err := sdb.getStateObject(addr)
	if err != nil {
		sdb.setErrorUnsafe(err)
	}
	if obj == nil {
		obj = sdb.createObject(addr, nil)
	}
	return obj
}

// createObject creates a new state object. If there is an existing account
// with the given address, it is overwritten.
func (sdb *IntraBlockState) createObject(addr common.Address, previous *stateObject) *stateObject {
	obj := newObject(addr, &Account{CodeHash: emptyCodeHash})
	obj.fresh = true
	if previous == nil {
		sdb.journal.appendCreateObject(addr)
	} else {
		sdb.journal.appendResetObject(addr, previous)
	}
	sdb.stateObjects[addr] = obj
	return obj
}

func (sdb *IntraBlockState) Exist(addr common.Address) (bool, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

// CreateAccount explicitly creates a state object. If a state object with the
// address already exists the balance is carried over to the new account.
func (sdb *IntraBlockState) CreateAccount(addr common.Address, contractCreation bool) {
	previous, err := sdb.getStateObject(addr)
	if err != nil {
		sdb.setErrorUnsafe(err)
	}
	obj := sdb.createObject(addr, previous)
	if previous != nil {
		obj.setBalance(previous.data.Balance)
	}
	obj.createdContract = contractCreation
}

func (sdb *IntraBlockState) GetBalance(addr common.Address) (uint256.Int, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return uint256.Int{}, err
	}
	return obj.data.Balance, nil
}

func (sdb *IntraBlockState) AddBalance(addr common.Address, amount uint256.Int) {
	obj := sdb.getOrNewStateObject(addr)
	sdb.journal.appendBalanceChange(addr, obj.data.Balance)
	var balance uint256.Int
	balance.Add(&obj.data.Balance, &amount)
	obj.setBalance(balance)
}

func (sdb *IntraBlockState) SubBalance(addr common.Address, amount uint256.Int) {
	obj := sdb.getOrNewStateObject(addr)
	sdb.journal.appendBalanceChange(addr, obj.data.Balance)
	var balance uint256.Int
	balance.Sub(&obj.data.Balance, &amount)
	obj.setBalance(balance)
}

func (sdb *IntraBlockState) GetNonce(addr common.Address) (uint64, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return 0, err
	}
	return obj.data.Nonce, nil
}

func (sdb *IntraBlockState) SetNonce(addr common.Address, nonce uint64) {
	obj := sdb.getOrNewStateObject(addr)
	sdb.journal.appendNonceChange(addr, obj.data.Nonce)
	obj.setNonce(nonce)
}

func (sdb *IntraBlockState) GetCode(addr common.Address) ([]byte, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return nil, err
	}
	if obj.codeLoaded {
		return obj.code, nil
	}
	if !obj.data.hasCode() {
		return nil, nil
	}
	code, err := sdb.stateReader.ReadAccountCode(addr, obj.data.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("reading code of %x: %w", addr, err)
	}
	obj.code, obj.codeLoaded = code, true
	return code, nil
}

// GetCodeHash returns the zero hash for accounts that do not exist.
func (sdb *IntraBlockState) GetCodeHash(addr common.Address) (common.Hash, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return common.Hash{}, err
	}
	if obj.data.CodeHash == (common.Hash{}) {
		return emptyCodeHash, nil
	}
	return obj.data.CodeHash, nil
}

func (sdb *IntraBlockState) SetCode(addr common.Address, code []byte) {
	obj := sdb.getOrNewStateObject(addr)
	sdb.journal.appendCodeChange(addr, obj.code, obj.data.CodeHash, obj.codeLoaded)
	obj.setCode(crypto.Keccak256Hash(code), common.CopyBytes(code))
}

func (sdb *IntraBlockState) GetState(addr common.Address, key common.Hash) (uint256.Int, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return uint256.Int{}, err
	}
	if value, ok := obj.storage[key]; ok {
		return value, nil
	}
	if obj.fresh {
		return uint256.Int{}, nil
	}
	value, err := sdb.stateReader.ReadAccountStorage(addr, key)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("reading storage %x of %x: %w", key, addr, err)
	}
	obj.storage[key] = value
	return value, nil
}

func (sdb *IntraBlockState) SetState(addr common.Address, key common.Hash, value uint256.Int) {
	obj := sdb.getOrNewStateObject(addr)
	prev, cached := obj.storage[key]
	sdb.journal.appendStorageChange(addr, key, prev, cached)
	obj.setState(key, value)
}

func (sdb *IntraBlockState) HasStorage(addr common.Address) (bool, error) {
	obj, err := sdb.getStateObject(addr)
	if err != nil || obj == nil {
		return false, err
	}
	if obj.dirtyStorage() {
		return true, nil
	}
	if obj.fresh {
		return false, nil
	}
	return sdb.stateReader.HasStorage(addr)
}

// Snapshot returns an identifier for the current revision of the state.
func (sdb *IntraBlockState) Snapshot() int {
	id := sdb.nextRevisionID
	sdb.nextRevisionID++
	sdb.validRevisions = append(sdb.validRevisions, revision{id, sdb.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (sdb *IntraBlockState) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(sdb.validRevisions), func(i int) bool {
		return sdb.validRevisions[i].id >= revid
	})
	if idx == len(sdb.validRevisions) || sdb.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted (valid revisions %d)", revid, len(sdb.validRevisions)))
	}
	snapshot := sdb.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	sdb.journal.revert(sdb, snapshot)
	sdb.validRevisions = sdb.validRevisions[:idx]
}

// FinalizeTx commits the journal: nothing done so far can be reverted
// afterwards.
func (sdb *IntraBlockState) FinalizeTx() {
	sdb.journal.Reset()
	sdb.validRevisions = sdb.validRevisions[:0]
}

// JournalLength is the number of changes that can still be reverted.
func (sdb *IntraBlockState) JournalLength() int { return sdb.journal.length() }

// CreatedContracts returns the accounts created by create frames.
func (sdb *IntraBlockState) CreatedContracts() mapset.Set[common.Address] {
	created := mapset.NewThreadUnsafeSet[common.Address]()
	for addr, obj := range sdb.stateObjects {
		if obj.createdContract {
			created.Add(addr)
		}
	}
	return created
}

// Copy creates a deep, independent copy of the state. The journal is not
// copied: snapshots taken on sdb are not valid on the copy.
func (sdb *IntraBlockState) Copy() *IntraBlockState {
	cpy := New(sdb.stateReader)
	for addr, obj := range sdb.stateObjects {
		cpy.stateObjects[addr] = obj.deepCopy()
	}
	cpy.savedErr = sdb.savedErr
	return cpy
}
