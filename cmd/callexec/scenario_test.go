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
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/tracing/dmlog"
	"github.com/erigontech/callexec/execution/vm"
	"github.com/erigontech/callexec/execution/vm/scriptvm"
)

const sender = "0x000000000000000000000000000000000000a11c"

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(`
[engine]
max_depth = 0
refund_policy = "none"
max_code_size = "1KB"
no_recursion = true

[engine.base_costs]
transfer = 1
call = 2
create = 3

[[accounts]]
address = "` + sender + `"
balance = "1000"
nonce = 2
code = "0x00"
storage = { "0x01" = "0x2a" }

[[request]]
type = "create2"
from = "` + sender + `"
gas = 5000
value = "7"
code = "0x0000"
salt = "0x10"
`))
	require.NoError(t, err)

	cfg := sc.Config()
	assert.Zero(t, cfg.MaxStackDepth)
	assert.Equal(t, vm.RefundNone, cfg.RefundPolicy)
	assert.Equal(t, datasize.KB, cfg.MaxCodeSize)
	assert.True(t, cfg.NoRecursion)
	assert.Equal(t, &vm.BaseCosts{Transfer: 1, Call: 2, Create: 3}, cfg.BaseCosts)

	alloc := sc.Alloc()
	acc := alloc[common.HexToAddress(sender)]
	assert.Equal(t, uint64(1000), acc.Balance.Uint64())
	assert.Equal(t, uint64(2), acc.Nonce)
	assert.Equal(t, []byte{0x00}, acc.Code)
	assert.Equal(t, common.HexToHash("0x2a"), acc.Storage[common.HexToHash("0x01")])

	p := sc.Requests[0].Params()
	assert.Equal(t, vm.Create2, p.Type)
	assert.Equal(t, uint64(7), p.Value.Value().Uint64())
	assert.Equal(t, uint64(0x10), p.Salt.Uint64())
	assert.Equal(t, []byte{0x00, 0x00}, p.Code)
	assert.Equal(t, common.Address{}, p.Address)
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte(`[engine]`))
	require.ErrorContains(t, err, "no request")

	_, err = ParseScenario([]byte("[[request]]\ntype = \"call\"\n"))
	require.ErrorContains(t, err, "gas is required")

	_, err = ParseScenario([]byte("[[request]]\ntype = \"jump\"\ngas = 1\n"))
	require.Error(t, err)

	_, err = ParseScenario([]byte("[engine]\nrefund_policy = \"sometimes\"\n[[request]]\ngas = 1\n"))
	require.Error(t, err)
}

func TestExecScenario(t *testing.T) {
	runtimeCode := scriptvm.NewProgram().Return([]byte{0x2a}).Bytes()
	initCode := scriptvm.NewProgram().Return(runtimeCode).Bytes()
	created := crypto.CreateAddress(common.HexToAddress(sender), 0)
	sc, err := ParseScenario([]byte(fmt.Sprintf(`
block = 7

[[accounts]]
address = %[1]q
balance = "1000"

[[request]]
type = "call"
from = %[1]q
to = "0x0000000000000000000000000000000000000004"
gas = 100000
input = "0x0102"

[[request]]
type = "create"
from = %[1]q
gas = 100000
code = %[2]q

[[request]]
type = "call"
from = %[1]q
to = %[3]q
gas = 100000
`, sender, hexutil.Encode(initCode), created.Hex())))
	require.NoError(t, err)

	var out bytes.Buffer
	rep, err := execScenario(context.Background(), sc, &out, dmlog.Full, true, log.Root())
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)

	identity := rep.Results[0]
	assert.True(t, identity.Success)
	assert.Equal(t, hexutil.Bytes{0x01, 0x02}, identity.ReturnData)
	assert.Equal(t, uint64(18), identity.GasUsed)
	assert.Zero(t, identity.Stats.Pushes)

	create := rep.Results[1]
	require.True(t, create.Success, create.Error)
	require.NotNil(t, create.ContractAddress)
	assert.Equal(t, created, *create.ContractAddress)

	call := rep.Results[2]
	require.True(t, call.Success, call.Error)
	assert.Equal(t, hexutil.Bytes{0x2a}, call.ReturnData)
	assert.Equal(t, vm.DefaultBaseCosts.Call, call.GasUsed)

	assert.Equal(t, hexutil.Bytes(runtimeCode), rep.State[created].Code)
	assert.Equal(t, uint64(1), rep.State[common.HexToAddress(sender)].Nonce)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "DMLOG BEGIN_BLOCK 7", lines[0])
	assert.Equal(t, "DMLOG BEGIN_APPLY_TRX 0000000000000000000000000000000000000004 . 100000 0102", lines[1])
	assert.Equal(t, "DMLOG END_APPLY_TRX 18", lines[6])
	assert.Equal(t, 3, strings.Count(out.String(), "BEGIN_APPLY_TRX"))
	assert.Equal(t, []string{"DMLOG FINALIZE_BLOCK 7", "DMLOG END_BLOCK 7 3"}, lines[len(lines)-2:])

	// block progress keeps the finalize line only
	out.Reset()
	_, err = execScenario(context.Background(), sc, &out, dmlog.BlockProgress, false, log.Root())
	require.NoError(t, err)
	assert.Equal(t, "DMLOG FINALIZE_BLOCK 7\n", out.String())
}

// flakyReader fails every account read of one address.
type flakyReader struct {
	*state.MemoryReader
	bad common.Address
}

func (r flakyReader) ReadAccountData(addr common.Address) (*state.Account, error) {
	if addr == r.bad {
		return nil, errors.New("disk gone")
	}
	return r.MemoryReader.ReadAccountData(addr)
}

func TestExecRevertsOnStateError(t *testing.T) {
	sc, err := ParseScenario([]byte(fmt.Sprintf(`
[[request]]
from = %[1]q
to = "0x0000000000000000000000000000000000000b0b"
value = "10"
gas = 10000
`, sender)))
	require.NoError(t, err)

	from, bad := common.HexToAddress(sender), common.HexToAddress("0xdead")
	ibs := state.New(flakyReader{
		MemoryReader: state.NewMemoryReader(state.GenesisAlloc{from: {Balance: uint256.NewInt(1000)}}),
		bad:          bad,
	})
	// a mutator swallows the read error and only records it
	ibs.SetNonce(bad, 1)
	require.Error(t, ibs.Error())

	rep, err := execOn(context.Background(), sc, ibs, &bytes.Buffer{}, dmlog.None, true, log.Root())
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "fatal", rep.Results[0].Reason)
	assert.Contains(t, rep.Results[0].Error, "disk gone")
	assert.Equal(t, "1000", rep.State[from].Balance)
	assert.NotContains(t, rep.State, common.HexToAddress("0xb0b"))
}

func TestExecBatchIsolatesRequests(t *testing.T) {
	sc, err := ParseScenario([]byte(fmt.Sprintf(`
[[accounts]]
address = %[1]q
balance = "10"

[[request]]
from = %[1]q
to = "0x0000000000000000000000000000000000000b0b"
value = "10"
gas = 10000

[[request]]
from = %[1]q
to = "0x0000000000000000000000000000000000000ca1"
value = "10"
gas = 10000
`, sender)))
	require.NoError(t, err)

	var out bytes.Buffer
	rep, err := execBatch(context.Background(), sc, &out, 2, dmlog.Full, true, log.Root())
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)
	for i, res := range rep.Results {
		require.True(t, res.Success, "request %d: %s", i, res.Error)
		assert.Equal(t, vm.DefaultBaseCosts.Transfer, res.GasUsed)
		assert.Equal(t, "0", res.State[common.HexToAddress(sender)].Balance)
	}
	assert.Equal(t, "10", rep.Results[0].State[common.HexToAddress("0xb0b")].Balance)
	assert.NotContains(t, rep.Results[0].State, common.HexToAddress("0xca1"))
	assert.Equal(t, 2, strings.Count(out.String(), "END_APPLY_TRX"))

	// the sequential runner shares the state, so the second transfer fails
	rep, err = execScenario(context.Background(), sc, &bytes.Buffer{}, dmlog.None, false, log.Root())
	require.NoError(t, err)
	assert.True(t, rep.Results[0].Success)
	assert.False(t, rep.Results[1].Success)
	assert.Equal(t, "insufficient_balance", rep.Results[1].Reason)
	assert.Zero(t, rep.Results[1].GasUsed)
}

func TestStandardBuiltins(t *testing.T) {
	builtins := standardBuiltins()
	_, ok := builtins.Lookup(common.BytesToAddress([]byte{0x04}))
	assert.True(t, ok)
	_, ok = builtins.Lookup(common.BytesToAddress([]byte{0x0a}))
	assert.True(t, ok, "point evaluation")
	_, ok = builtins.Lookup(common.BytesToAddress([]byte{0x0b}))
	assert.False(t, ok)

	out := vm.RunBuiltin(mustLookup(t, builtins, 0x04), []byte{1, 2, 3}, 100)
	require.NoError(t, out.Err)
	assert.Equal(t, []byte{1, 2, 3}, out.ReturnData)
	assert.Equal(t, uint64(100-18), out.GasLeft)
}

func mustLookup(t *testing.T, table *vm.BuiltinTable, addr byte) vm.Builtin {
	t.Helper()
	b, ok := table.Lookup(common.BytesToAddress([]byte{addr}))
	require.True(t, ok)
	return b
}

func TestWriteReport(t *testing.T) {
	created := common.HexToAddress("0xc0de")
	rep := &report{Results: []requestResult{
		newResult(&vm.ActionParams{Type: vm.Call, Gas: 100}, vm.Failure(vm.ErrOutOfGas, 0), vm.Stats{}, nil),
		newResult(&vm.ActionParams{Type: vm.Create, Gas: 100}, &vm.Outcome{GasLeft: 40, ContractAddress: created}, vm.Stats{Pushes: 1, Pops: 1, MaxDepth: 1}, nil),
		newResult(&vm.ActionParams{Type: vm.Call, Gas: 100}, nil, vm.Stats{}, &vm.AbortError{GasUsed: 30, Err: context.Canceled}),
	}}
	assert.Equal(t, "out_of_gas", rep.Results[0].Reason)
	assert.Equal(t, uint64(100), rep.Results[0].GasUsed)
	assert.Equal(t, uint64(60), rep.Results[1].GasUsed)
	assert.Equal(t, "aborted", rep.Results[2].Reason)
	assert.Equal(t, uint64(30), rep.Results[2].GasUsed)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, "table"))
	assert.Contains(t, buf.String(), "out_of_gas")
	assert.Contains(t, buf.String(), created.Hex())

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, "json"))
	assert.Contains(t, buf.String(), `"reason": "aborted"`)

	require.Error(t, writeReport(&buf, rep, "yaml"))
}
