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
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	carol = common.HexToAddress("0xca401")
	slot  = common.HexToHash("0x01")
)

func testAlloc() GenesisAlloc {
	return GenesisAlloc{
		alice: {Balance: uint256.NewInt(1000), Nonce: 3},
		bob: {
			Code:    []byte{0x60, 0x00},
			Storage: map[common.Hash]common.Hash{slot: common.HexToHash("0x2a")},
		},
	}
}

func TestReads(t *testing.T) {
	s := NewFromAlloc(testAlloc())

	exist, err := s.Exist(alice)
	require.NoError(t, err)
	assert.True(t, exist)
	exist, err = s.Exist(carol)
	require.NoError(t, err)
	assert.False(t, exist)

	balance, err := s.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance.Uint64())

	nonce, err := s.GetNonce(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)

	code, err := s.GetCode(bob)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00}, code)
	hash, err := s.GetCodeHash(bob)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(code), hash)

	hash, err = s.GetCodeHash(alice)
	require.NoError(t, err)
	assert.Equal(t, emptyCodeHash, hash)
	hash, err = s.GetCodeHash(carol)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, hash)

	value, err := s.GetState(bob, slot)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value.Uint64())
	has, err := s.HasStorage(bob)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRevertToSnapshot(t *testing.T) {
	s := NewFromAlloc(testAlloc())

	outer := s.Snapshot()
	s.SubBalance(alice, *uint256.NewInt(100))
	s.AddBalance(carol, *uint256.NewInt(100))
	s.SetNonce(alice, 4)

	inner := s.Snapshot()
	s.SetState(bob, slot, *uint256.NewInt(7))
	s.SetState(bob, common.HexToHash("0x02"), *uint256.NewInt(8))
	s.SetCode(carol, []byte{0x01})
	s.CreateAccount(common.HexToAddress("0xd00d"), true)

	s.RevertToSnapshot(inner)
	value, err := s.GetState(bob, slot)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value.Uint64())
	code, err := s.GetCode(carol)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, 0, s.CreatedContracts().Cardinality())

	balance, err := s.GetBalance(carol)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance.Uint64())

	s.RevertToSnapshot(outer)
	exist, err := s.Exist(carol)
	require.NoError(t, err)
	assert.False(t, exist)
	balance, err = s.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance.Uint64())
	nonce, err := s.GetNonce(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)
	assert.NotContains(t, s.Dump(), carol)
	assert.Zero(t, s.JournalLength())

	assert.Panics(t, func() { s.RevertToSnapshot(inner) })
}

func TestCreateAccountCarriesBalance(t *testing.T) {
	s := NewFromAlloc(testAlloc())
	snap := s.Snapshot()

	s.CreateAccount(bob, true)
	code, err := s.GetCode(bob)
	require.NoError(t, err)
	assert.Empty(t, code)
	value, err := s.GetState(bob, slot)
	require.NoError(t, err)
	assert.True(t, value.IsZero())
	has, err := s.HasStorage(bob)
	require.NoError(t, err)
	assert.False(t, has)
	assert.True(t, s.CreatedContracts().Contains(bob))

	s.CreateAccount(alice, false)
	balance, err := s.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance.Uint64())
	nonce, err := s.GetNonce(alice)
	require.NoError(t, err)
	assert.Zero(t, nonce)

	s.RevertToSnapshot(snap)
	nonce, err = s.GetNonce(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)
	value, err = s.GetState(bob, slot)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value.Uint64())
}

func TestCopyIsIndependent(t *testing.T) {
	s := NewFromAlloc(testAlloc())
	s.AddBalance(alice, *uint256.NewInt(1))
	s.FinalizeTx()

	cpy := s.Copy()
	cpy.AddBalance(alice, *uint256.NewInt(1))
	cpy.SetState(bob, slot, *uint256.NewInt(1))

	balance, err := s.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), balance.Uint64())
	value, err := s.GetState(bob, slot)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value.Uint64())

	balance, err = cpy.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1002), balance.Uint64())
}

func TestRevertRestoresDump(t *testing.T) {
	s := NewFromAlloc(testAlloc())
	// bring every account the test touches into memory first
	for _, addr := range []common.Address{alice, bob} {
		_, err := s.GetBalance(addr)
		require.NoError(t, err)
		_, err = s.GetCode(addr)
		require.NoError(t, err)
	}
	_, err := s.GetState(bob, slot)
	require.NoError(t, err)
	before := s.Dump()

	id := s.Snapshot()
	s.AddBalance(alice, *uint256.NewInt(5))
	s.SubBalance(alice, *uint256.NewInt(100))
	s.SetNonce(alice, 9)
	s.SetCode(alice, []byte{0x01})
	s.SetState(bob, slot, *uint256.NewInt(7))
	s.SetState(bob, common.HexToHash("0x02"), *uint256.NewInt(8))
	s.CreateAccount(bob, true)
	s.CreateAccount(carol, true)
	s.AddBalance(carol, *uint256.NewInt(1))
	require.NotEmpty(t, cmp.Diff(before, s.Dump()))

	s.RevertToSnapshot(id)
	if diff := cmp.Diff(before, s.Dump()); diff != "" {
		t.Fatalf("state differs after revert (-want +got):\n%s", diff)
	}
	assert.Zero(t, s.JournalLength())
}

type failingReader struct {
	*MemoryReader
	err error
}

func (r failingReader) ReadAccountData(common.Address) (*Account, error) { return nil, r.err }

func TestReadErrors(t *testing.T) {
	boom := errors.New("boom")
	s := New(failingReader{MemoryReader: NewMemoryReader(nil), err: boom})

	_, err := s.GetBalance(alice)
	require.ErrorIs(t, err, boom)

	s.AddBalance(alice, *uint256.NewInt(1))
	require.ErrorIs(t, s.Error(), boom)
}
