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
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journalEntryKind is the discriminator for journal entry types.
type journalEntryKind uint8

const (
	kindCreateObject journalEntryKind = iota
	kindResetObject
	kindBalanceChange
	kindNonceChange
	kindStorageChange
	kindCodeChange
)

// journalEntry is a discriminated union of all journal entry types.
// This avoids interface boxing allocations that would occur with []interface{}.
type journalEntry struct {
	kind journalEntryKind

	account common.Address

	// For balance and storage changes
	prevValue uint256.Int

	// For storage changes
	key common.Hash
	// For storage changes: whether the slot was cached before the write
	prevCached bool

	// For nonce changes
	prevNonce uint64

	// For code changes
	prevCode       []byte
	prevCodeHash   common.Hash
	prevCodeLoaded bool

	// For reset object
	prevObject *stateObject
}

var journalPool = sync.Pool{
	New: func() any {
		return &journal{
			dirties: make(map[common.Address]int),
			entries: make([]journalEntry, 0, 256),
		}
	},
}

// journal contains the list of state modifications applied since the last
// FinalizeTx. These are tracked to be able to be reverted in case a frame
// fails.
type journal struct {
	entries []journalEntry         // Current changes tracked by the journal
	dirties map[common.Address]int // Dirty accounts and the number of changes
}

// newJournal gets a journal from the pool.
func newJournal() *journal {
	return journalPool.Get().(*journal)
}

// release returns the journal to the pool after resetting it.
func (j *journal) release() {
	j.Reset()
	journalPool.Put(j)
}

func (j *journal) Reset() {
	// Clear entries but keep capacity
	for i := range j.entries {
		j.entries[i] = journalEntry{} // Clear to help GC
	}
	j.entries = j.entries[:0]
	clear(j.dirties)
}

func (j *journal) appendCreateObject(account common.Address) {
	j.entries = append(j.entries, journalEntry{
		kind:    kindCreateObject,
		account: account,
	})
	j.dirties[account]++
}

func (j *journal) appendResetObject(account common.Address, prev *stateObject) {
	j.entries = append(j.entries, journalEntry{
		kind:       kindResetObject,
		account:    account,
		prevObject: prev,
	})
	j.dirties[account]++
}

func (j *journal) appendBalanceChange(account common.Address, prev uint256.Int) {
	j.entries = append(j.entries, journalEntry{
		kind:      kindBalanceChange,
		account:   account,
		prevValue: prev,
	})
	j.dirties[account]++
}

func (j *journal) appendNonceChange(account common.Address, prev uint64) {
	j.entries = append(j.entries, journalEntry{
		kind:      kindNonceChange,
		account:   account,
		prevNonce: prev,
	})
	j.dirties[account]++
}

func (j *journal) appendStorageChange(account common.Address, key common.Hash, prev uint256.Int, cached bool) {
	j.entries = append(j.entries, journalEntry{
		kind:       kindStorageChange,
		account:    account,
		key:        key,
		prevValue:  prev,
		prevCached: cached,
	})
	j.dirties[account]++
}

func (j *journal) appendCodeChange(account common.Address, prevCode []byte, prevHash common.Hash, loaded bool) {
	j.entries = append(j.entries, journalEntry{
		kind:           kindCodeChange,
		account:        account,
		prevCode:       prevCode,
		prevCodeHash:   prevHash,
		prevCodeLoaded: loaded,
	})
	j.dirties[account]++
}

// revert undoes a batch of journalled modifications along with any reverted
// dirty handling too.
func (j *journal) revert(s *IntraBlockState, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		entry := &j.entries[i]
		// Undo the changes made by the operation
		revertEntry(entry, s)

		// Drop any dirty tracking induced by the change
		if j.dirties[entry.account]--; j.dirties[entry.account] == 0 {
			delete(j.dirties, entry.account)
		}
		j.entries[i] = journalEntry{}
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

// revertEntry reverts a single journal entry. Every entry refers to an object
// that is resident in s, since it was written through s.
func revertEntry(e *journalEntry, s *IntraBlockState) {
	switch e.kind {
	case kindCreateObject:
		delete(s.stateObjects, e.account)

	case kindResetObject:
		if e.prevObject == nil {
			delete(s.stateObjects, e.account)
		} else {
			s.stateObjects[e.account] = e.prevObject
		}

	case kindBalanceChange:
		s.stateObjects[e.account].setBalance(e.prevValue)

	case kindNonceChange:
		s.stateObjects[e.account].setNonce(e.prevNonce)

	case kindStorageChange:
		obj := s.stateObjects[e.account]
		if e.prevCached {
			obj.setState(e.key, e.prevValue)
		} else {
			delete(obj.storage, e.key)
		}

	case kindCodeChange:
		obj := s.stateObjects[e.account]
		obj.code = e.prevCode
		obj.codeLoaded = e.prevCodeLoaded
		obj.data.CodeHash = e.prevCodeHash
	}
}
