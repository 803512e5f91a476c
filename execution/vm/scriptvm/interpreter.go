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

package scriptvm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/erigontech/callexec/execution/vm"
)

var (
	ErrInvalidOpCode = errors.New("invalid opcode")
	ErrTruncated     = errors.New("truncated instruction")
	ErrForeignToken  = errors.New("resume token not issued by scriptvm")
	ErrCallType      = errors.New("invalid call type")
)

// Interpreter implements vm.Executor for scriptvm code. It holds no per-call
// state, all of it lives in the continuation handed out on suspension.
type Interpreter struct {
	logger log.Logger
}

func New(logger log.Logger) *Interpreter {
	if logger == nil {
		logger = log.Root()
	}
	return &Interpreter{logger: logger}
}

type machine struct {
	params *vm.ActionParams
	code   []byte
	pc     int
	gas    uint64
	// last is the outcome of the most recent child
	last *vm.Outcome
}

// continuation is the scriptvm resume token.
type continuation struct {
	m     *machine
	spent bool
}

func (in *Interpreter) Run(p *vm.ActionParams, ibs vm.IntraBlockState) (vm.Result, error) {
	m := &machine{params: p, code: p.Code, gas: p.Gas}
	return in.execute(m, ibs)
}

func (in *Interpreter) Resume(token vm.ResumeToken, child *vm.Outcome, ibs vm.IntraBlockState) (vm.Result, error) {
	c, ok := token.(*continuation)
	if !ok {
		return vm.Result{}, fmt.Errorf("%w: %T", ErrForeignToken, token)
	}
	if c.spent {
		return vm.Result{}, fmt.Errorf("%w: continuation resumed twice", vm.ErrInvariantViolation)
	}
	if child == nil {
		return vm.Result{}, fmt.Errorf("%w: resume without child outcome", vm.ErrInvariantViolation)
	}
	c.spent = true
	m := c.m
	m.gas += child.GasLeft
	m.last = child
	return in.execute(m, ibs)
}

func fault(err error) vm.Result {
	return vm.Completed(vm.Failure(fmt.Errorf("%w: %w", vm.ErrExecutionFault, err), 0))
}

func (in *Interpreter) execute(m *machine, ibs vm.IntraBlockState) (vm.Result, error) {
	for m.pc < len(m.code) {
		op := OpCode(m.code[m.pc])
		m.pc++

		switch op {
		case STOP:
			return vm.Completed(vm.Success(nil, m.gas)), nil

		case RETURN, REVERT:
			data, err := m.blob()
			if err != nil {
				return fault(err), nil
			}
			if op == REVERT {
				return vm.Completed(vm.Revert(data, m.gas)), nil
			}
			return vm.Completed(vm.Success(data, m.gas)), nil

		case FAIL:
			return fault(errors.New("FAIL")), nil

		case SSTORE:
			key, err := m.hash()
			if err != nil {
				return fault(err), nil
			}
			value, err := m.word()
			if err != nil {
				return fault(err), nil
			}
			if m.params.ReadOnly {
				return vm.Completed(vm.Failure(vm.ErrWriteProtection, 0)), nil
			}
			ibs.SetState(m.params.Address, key, value)

		case SLOAD:
			key, err := m.hash()
			if err != nil {
				return fault(err), nil
			}
			value, err := ibs.GetState(m.params.Address, key)
			if err != nil {
				return vm.Result{}, fmt.Errorf("%w: %w", vm.ErrIntraBlockStateFailed, err)
			}
			ret := value.Bytes32()
			return vm.Completed(vm.Success(ret[:], m.gas)), nil

		case BURN:
			amount, err := m.u64()
			if err != nil {
				return fault(err), nil
			}
			if m.gas < amount {
				return vm.Completed(vm.Failure(vm.ErrOutOfGas, 0)), nil
			}
			m.gas -= amount

		case CALL, CREATE, CREATE2:
			req, err := m.request(op)
			if err != nil {
				return fault(err), nil
			}
			return in.suspend(m, req), nil

		case RETURNCHILD:
			switch {
			case m.last == nil:
				return vm.Completed(vm.Success(nil, m.gas)), nil
			case m.last.ContractAddress != (common.Address{}):
				return vm.Completed(vm.Success(m.last.ContractAddress.Bytes(), m.gas)), nil
			default:
				return vm.Completed(vm.Success(common.CopyBytes(m.last.ReturnData), m.gas)), nil
			}

		case REQUIREOK:
			if m.last != nil && m.last.Failed() {
				return vm.Completed(vm.Revert([]byte(m.last.Err.Error()), m.gas)), nil
			}

		default:
			return fault(fmt.Errorf("%w: %s at pc %d", ErrInvalidOpCode, op, m.pc-1)), nil
		}
	}
	return vm.Completed(vm.Success(nil, m.gas)), nil
}

// suspend forwards at most the gas the machine has and parks it.
func (in *Interpreter) suspend(m *machine, req *vm.ActionParams) vm.Result {
	req.Gas = min(req.Gas, m.gas)
	m.gas -= req.Gas
	in.logger.Trace("scriptvm suspended", "address", m.params.Address, "pc", m.pc, "request", req.Type, "gas", req.Gas, "kept", m.gas)
	return vm.Suspended(&vm.Trap{Request: req, Token: &continuation{m: m}, GasLeft: m.gas})
}

func (m *machine) request(op OpCode) (*vm.ActionParams, error) {
	self := m.params
	switch op {
	case CALL:
		typ, err := m.read(1)
		if err != nil {
			return nil, err
		}
		to, err := m.read(common.AddressLength)
		if err != nil {
			return nil, err
		}
		gas, err := m.u64()
		if err != nil {
			return nil, err
		}
		value, err := m.word()
		if err != nil {
			return nil, err
		}
		input, err := m.blob()
		if err != nil {
			return nil, err
		}
		target := common.BytesToAddress(to)
		req := &vm.ActionParams{
			Type:        vm.ActionType(typ[0]),
			CodeAddress: target,
			Address:     target,
			Sender:      self.Address,
			Gas:         gas,
			Input:       input,
		}
		switch req.Type {
		case vm.Call:
			req.Value = vm.TransferValue(&value)
		case vm.CallCode:
			req.Address = self.Address
			req.Value = vm.TransferValue(&value)
		case vm.DelegateCall:
			req.Address = self.Address
			req.Sender = self.Sender
			req.Value = vm.ApparentValue(self.Value.Value())
		case vm.StaticCall:
			req.ReadOnly = true
		default:
			return nil, fmt.Errorf("%w: %d", ErrCallType, typ[0])
		}
		return req, nil

	default:
		gas, err := m.u64()
		if err != nil {
			return nil, err
		}
		value, err := m.word()
		if err != nil {
			return nil, err
		}
		req := &vm.ActionParams{Type: vm.Create, Sender: self.Address, Gas: gas, Value: vm.TransferValue(&value)}
		if op == CREATE2 {
			req.Type = vm.Create2
			if req.Salt, err = m.word(); err != nil {
				return nil, err
			}
		}
		if req.Code, err = m.blob(); err != nil {
			return nil, err
		}
		return req, nil
	}
}

func (m *machine) read(n int) ([]byte, error) {
	if len(m.code)-m.pc < n {
		return nil, fmt.Errorf("%w at pc %d", ErrTruncated, m.pc)
	}
	b := m.code[m.pc : m.pc+n]
	m.pc += n
	return b, nil
}

func (m *machine) u64() (uint64, error) {
	b, err := m.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (m *machine) hash() (common.Hash, error) {
	b, err := m.read(common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func (m *machine) word() (uint256.Int, error) {
	var v uint256.Int
	b, err := m.read(32)
	if err != nil {
		return v, err
	}
	v.SetBytes32(b)
	return v, nil
}

func (m *machine) blob() ([]byte, error) {
	b, err := m.read(2)
	if err != nil {
		return nil, err
	}
	data, err := m.read(int(binary.BigEndian.Uint16(b)))
	if err != nil {
		return nil, err
	}
	return common.CopyBytes(data), nil
}
