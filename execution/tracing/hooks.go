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

// Package tracing defines the hooks the call/create engine fires while it
// walks a call tree. Every hook is optional.
package tracing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type (
	// TxStartHook is called before a top-level request starts.
	TxStartHook = func(from, to common.Address, create bool, input []byte, gas uint64, value *uint256.Int)

	// TxEndHook is called after a top-level request finished, err is only set
	// for fatal errors and aborts.
	TxEndHook = func(gasUsed uint64, err error)

	// EnterHook is invoked when a call or create frame is entered. typ is the
	// action type as a byte, see vm.ActionType. to is the account whose code
	// runs and value is nil unless the frame moves it.
	EnterHook = func(depth int, typ byte, from, to common.Address, builtin bool, input []byte, gas uint64, value *uint256.Int, code []byte)

	// ExitHook is invoked when a frame finished. reverted is true for every
	// failure: the frame's state changes were rolled back.
	ExitHook = func(depth int, output []byte, gasUsed uint64, err error, reverted bool)

	// SuspendHook is invoked when a frame is paused waiting on a child.
	SuspendHook = func(depth int, gasLeft uint64)

	// ResumeHook is invoked when a paused frame receives its child's outcome.
	ResumeHook = func(depth int, childErr error)

	// GasChangeHook is invoked when the engine itself moves gas.
	GasChangeHook = func(old, new uint64, reason GasChangeReason)
)

type Hooks struct {
	OnTxStart   TxStartHook
	OnTxEnd     TxEndHook
	OnEnter     EnterHook
	OnExit      ExitHook
	OnSuspend   SuspendHook
	OnResume    ResumeHook
	OnGasChange GasChangeHook
}

// GasChangeReason is used to indicate the reason for a gas change.
type GasChangeReason byte

const (
	GasChangeUnspecified GasChangeReason = iota
	// GasChangeCallBaseCost is the fixed cost charged before a frame runs.
	GasChangeCallBaseCost
	// GasChangeCallCodeStorage is the per-byte deposit for created code.
	GasChangeCallCodeStorage
	// GasChangeCallFailedExecution burns what a failed child had left.
	GasChangeCallFailedExecution
	// GasChangeCallLeftOverReturned is unused gas handed back to the parent.
	GasChangeCallLeftOverReturned
)

func (r GasChangeReason) String() string {
	switch r {
	case GasChangeCallBaseCost:
		return "base_cost"
	case GasChangeCallCodeStorage:
		return "code_storage"
	case GasChangeCallFailedExecution:
		return "failed_execution"
	case GasChangeCallLeftOverReturned:
		return "left_over_returned"
	default:
		return "unspecified"
	}
}

// Combine chains several hook sets; each hook fires in argument order.
func Combine(hooks ...*Hooks) *Hooks {
	var set []*Hooks
	for _, h := range hooks {
		if h != nil {
			set = append(set, h)
		}
	}
	switch len(set) {
	case 0:
		return nil
	case 1:
		return set[0]
	}

	var (
		txStarts []TxStartHook
		txEnds   []TxEndHook
		enters   []EnterHook
		exits    []ExitHook
		suspends []SuspendHook
		resumes  []ResumeHook
		gas      []GasChangeHook
	)
	for _, h := range set {
		if h.OnTxStart != nil {
			txStarts = append(txStarts, h.OnTxStart)
		}
		if h.OnTxEnd != nil {
			txEnds = append(txEnds, h.OnTxEnd)
		}
		if h.OnEnter != nil {
			enters = append(enters, h.OnEnter)
		}
		if h.OnExit != nil {
			exits = append(exits, h.OnExit)
		}
		if h.OnSuspend != nil {
			suspends = append(suspends, h.OnSuspend)
		}
		if h.OnResume != nil {
			resumes = append(resumes, h.OnResume)
		}
		if h.OnGasChange != nil {
			gas = append(gas, h.OnGasChange)
		}
	}

	out := &Hooks{}
	if len(txStarts) > 0 {
		out.OnTxStart = func(from, to common.Address, create bool, input []byte, g uint64, value *uint256.Int) {
			for _, f := range txStarts {
				f(from, to, create, input, g, value)
			}
		}
	}
	if len(txEnds) > 0 {
		out.OnTxEnd = func(gasUsed uint64, err error) {
			for _, f := range txEnds {
				f(gasUsed, err)
			}
		}
	}
	if len(enters) > 0 {
		out.OnEnter = func(depth int, typ byte, from, to common.Address, builtin bool, input []byte, g uint64, value *uint256.Int, code []byte) {
			for _, f := range enters {
				f(depth, typ, from, to, builtin, input, g, value, code)
			}
		}
	}
	if len(exits) > 0 {
		out.OnExit = func(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
			for _, f := range exits {
				f(depth, output, gasUsed, err, reverted)
			}
		}
	}
	if len(suspends) > 0 {
		out.OnSuspend = func(depth int, gasLeft uint64) {
			for _, f := range suspends {
				f(depth, gasLeft)
			}
		}
	}
	if len(resumes) > 0 {
		out.OnResume = func(depth int, childErr error) {
			for _, f := range resumes {
				f(depth, childErr)
			}
		}
	}
	if len(gas) > 0 {
		out.OnGasChange = func(old, new uint64, reason GasChangeReason) {
			for _, f := range gas {
				f(old, new, reason)
			}
		}
	}
	return out
}
