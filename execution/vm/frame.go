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
	"fmt"
)

// FrameKind is the discriminator of Frame.
type FrameKind uint8

const (
	KindTransfer FrameKind = iota
	KindCallBuiltin
	KindExecCall
	KindExecCreate
	KindResumeCall
	KindResumeCreate
	KindDone
)

func (k FrameKind) String() string {
	switch k {
	case KindTransfer:
		return "Transfer"
	case KindCallBuiltin:
		return "CallBuiltin"
	case KindExecCall:
		return "ExecCall"
	case KindExecCreate:
		return "ExecCreate"
	case KindResumeCall:
		return "ResumeCall"
	case KindResumeCreate:
		return "ResumeCreate"
	case KindDone:
		return "Done"
	default:
		return fmt.Sprintf("FrameKind(%d)", uint8(k))
	}
}

// Atomic frames finish in one step and never suspend.
func (k FrameKind) Atomic() bool { return k == KindTransfer || k == KindCallBuiltin }

func (k FrameKind) suspended() bool { return k == KindResumeCall || k == KindResumeCreate }

// Frame is one logical call or create. It is a discriminated union: which
// payload fields are meaningful depends on kind.
type Frame struct {
	kind   FrameKind
	params *ActionParams

	// KindCallBuiltin
	builtin Builtin

	// KindExec*, KindResume*
	executor Executor
	set      InstructionSet

	// KindResume*: the continuation, consumed on resumption.
	token ResumeToken
	// KindResume*: gas the frame kept for itself when it suspended.
	gasLeft uint64

	// KindDone
	outcome *Outcome

	snapshot int
	startGas uint64
	// available is the gas the executor held at its last run or resume; a
	// trap cannot hand out more than that.
	available uint64
}

func (f *Frame) Kind() FrameKind { return f.kind }

func (f *Frame) Depth() int { return f.params.Depth }

// Outcome is only set once the frame is done.
func (f *Frame) Outcome() *Outcome { return f.outcome }

func (f *Frame) String() string {
	return fmt.Sprintf("%s(%s)", f.kind, f.params)
}

// runAtomic advances a Transfer or CallBuiltin frame straight to Done.
// gas is what remains after the base cost.
func (f *Frame) runAtomic(gas uint64) (*Outcome, error) {
	var out *Outcome
	switch f.kind {
	case KindTransfer:
		// The value already moved on entry; nothing else happens.
		out = Success(nil, gas)
	case KindCallBuiltin:
		out = RunBuiltin(f.builtin, f.params.Input, gas)
	default:
		return nil, fmt.Errorf("%w: atomic step on %s frame", ErrInvariantViolation, f.kind)
	}
	f.done(out)
	return out, nil
}

// run starts a fresh ExecCall/ExecCreate frame.
func (f *Frame) run(ibs IntraBlockState) (*Trap, error) {
	if f.kind != KindExecCall && f.kind != KindExecCreate {
		return nil, fmt.Errorf("%w: fresh run of %s frame", ErrInvariantViolation, f.kind)
	}
	f.available = f.params.Gas
	res, err := f.executor.Run(f.params, ibs)
	return f.advance(res, err)
}

// resume hands the child's outcome to a suspended frame. The token is taken
// out of the frame before the executor sees it, so a second resume with the
// same token is impossible.
func (f *Frame) resume(child *Outcome, ibs IntraBlockState) (*Trap, error) {
	if !f.kind.suspended() {
		return nil, fmt.Errorf("%w: resume of %s frame", ErrInvariantViolation, f.kind)
	}
	if f.token == nil {
		return nil, fmt.Errorf("%w: resume token of %s already consumed", ErrInvariantViolation, f)
	}
	if child == nil {
		return nil, fmt.Errorf("%w: resume of %s without a child outcome", ErrInvariantViolation, f)
	}
	token := f.token
	f.token = nil
	f.available = f.gasLeft + child.GasLeft
	if f.available < f.gasLeft {
		return nil, fmt.Errorf("%w: %s resumed with %d gas on top of %d", ErrInvariantViolation, f, child.GasLeft, f.gasLeft)
	}
	f.gasLeft = 0
	res, err := f.executor.Resume(token, child, ibs)
	return f.advance(res, err)
}

// advance applies an executor result: either the frame is done, or it moved
// to its Resume state holding a fresh token.
func (f *Frame) advance(res Result, err error) (*Trap, error) {
	if err != nil {
		if IsFatal(err) {
			return nil, err
		}
		f.done(Failure(fmt.Errorf("%w: %w", ErrExecutionFault, err), 0))
		return nil, nil
	}
	switch {
	case res.Outcome != nil && res.Trap != nil:
		return nil, fmt.Errorf("%w: executor returned both an outcome and a trap", ErrInvariantViolation)
	case res.Outcome != nil:
		f.done(res.Outcome)
		return nil, nil
	case res.Trap != nil:
		if res.Trap.Request == nil || res.Trap.Token == nil {
			return nil, fmt.Errorf("%w: incomplete trap from %s frame", ErrInvariantViolation, f.kind)
		}
		if t := res.Trap; t.GasLeft > f.available || t.Request.Gas > f.available-t.GasLeft {
			return nil, fmt.Errorf("%w: %s forwards %d gas and keeps %d out of %d", ErrInvariantViolation, f, t.Request.Gas, t.GasLeft, f.available)
		}
		f.suspend(res.Trap)
		return res.Trap, nil
	default:
		return nil, fmt.Errorf("%w: executor returned neither outcome nor trap", ErrInvariantViolation)
	}
}

func (f *Frame) suspend(t *Trap) {
	switch f.kind {
	case KindExecCall:
		f.kind = KindResumeCall
	case KindExecCreate:
		f.kind = KindResumeCreate
	}
	f.token = t.Token
	f.gasLeft = t.GasLeft
}

func (f *Frame) done(out *Outcome) {
	f.kind = KindDone
	f.outcome = out
	f.token = nil
	f.executor = nil
	f.builtin = nil
}
