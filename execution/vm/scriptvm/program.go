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

// Package scriptvm is a small suspendable interpreter. Programs are straight
// line sequences of ops; a nested call or create suspends the machine and
// hands a continuation back to the orchestrator.
package scriptvm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/erigontech/callexec/execution/vm"
)

// OpCode is a single byte instruction.
type OpCode byte

const (
	STOP        OpCode = 0x00
	RETURN      OpCode = 0x01
	REVERT      OpCode = 0x02
	FAIL        OpCode = 0x03
	SSTORE      OpCode = 0x04
	SLOAD       OpCode = 0x05
	BURN        OpCode = 0x06
	CALL        OpCode = 0x10
	CREATE      OpCode = 0x11
	CREATE2     OpCode = 0x12
	RETURNCHILD OpCode = 0x20
	REQUIREOK   OpCode = 0x21
)

var opCodeToString = map[OpCode]string{
	STOP:        "STOP",
	RETURN:      "RETURN",
	REVERT:      "REVERT",
	FAIL:        "FAIL",
	SSTORE:      "SSTORE",
	SLOAD:       "SLOAD",
	BURN:        "BURN",
	CALL:        "CALL",
	CREATE:      "CREATE",
	CREATE2:     "CREATE2",
	RETURNCHILD: "RETURNCHILD",
	REQUIREOK:   "REQUIREOK",
}

func (op OpCode) String() string {
	if s, ok := opCodeToString[op]; ok {
		return s
	}
	return "opcode 0x" + common.Bytes2Hex([]byte{byte(op)}) + " not defined"
}

// Program assembles scriptvm code.
//
//	code := scriptvm.NewProgram().
//		Call(vm.Call, callee, 10_000, nil, nil).
//		RequireOK().
//		ReturnChild().
//		Bytes()
type Program struct {
	code []byte
}

func NewProgram() *Program { return &Program{} }

func (p *Program) Bytes() []byte { return common.CopyBytes(p.code) }

func (p *Program) op(op OpCode) *Program {
	p.code = append(p.code, byte(op))
	return p
}

func (p *Program) u64(v uint64) *Program {
	p.code = binary.BigEndian.AppendUint64(p.code, v)
	return p
}

// MaxBlobSize is the largest data or init code a single op can carry.
const MaxBlobSize = math.MaxUint16

func (p *Program) blob(b []byte) *Program {
	if len(b) > MaxBlobSize {
		panic(fmt.Sprintf("scriptvm: blob of %d bytes exceeds %d", len(b), MaxBlobSize))
	}
	p.code = binary.BigEndian.AppendUint16(p.code, uint16(len(b)))
	p.code = append(p.code, b...)
	return p
}

func (p *Program) word(v *uint256.Int) *Program {
	var w [32]byte
	if v != nil {
		w = v.Bytes32()
	}
	p.code = append(p.code, w[:]...)
	return p
}

func (p *Program) Stop() *Program { return p.op(STOP) }

func (p *Program) Return(data []byte) *Program { return p.op(RETURN).blob(data) }

func (p *Program) Revert(data []byte) *Program { return p.op(REVERT).blob(data) }

// Fail stops with an executor fault, burning all gas.
func (p *Program) Fail() *Program { return p.op(FAIL) }

func (p *Program) SStore(key common.Hash, value *uint256.Int) *Program {
	p.op(SSTORE)
	p.code = append(p.code, key[:]...)
	return p.word(value)
}

// SLoad returns the storage word at key and stops.
func (p *Program) SLoad(key common.Hash) *Program {
	p.op(SLOAD)
	p.code = append(p.code, key[:]...)
	return p
}

func (p *Program) Burn(gas uint64) *Program { return p.op(BURN).u64(gas) }

// Call requests a nested call of the given type. value is ignored for
// DELEGATECALL and STATICCALL.
func (p *Program) Call(typ vm.ActionType, to common.Address, gas uint64, value *uint256.Int, input []byte) *Program {
	p.op(CALL)
	p.code = append(p.code, byte(typ))
	p.code = append(p.code, to[:]...)
	return p.u64(gas).word(value).blob(input)
}

func (p *Program) Create(gas uint64, value *uint256.Int, initCode []byte) *Program {
	return p.op(CREATE).u64(gas).word(value).blob(initCode)
}

func (p *Program) Create2(gas uint64, value, salt *uint256.Int, initCode []byte) *Program {
	return p.op(CREATE2).u64(gas).word(value).word(salt).blob(initCode)
}

// ReturnChild stops, returning the last child's return data, or the address
// of the contract it created.
func (p *Program) ReturnChild() *Program { return p.op(RETURNCHILD) }

// RequireOK reverts with the last child's error unless it succeeded.
func (p *Program) RequireOK() *Program { return p.op(REQUIREOK) }
