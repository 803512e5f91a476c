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
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"

	"github.com/erigontech/callexec/execution/tracing"
	"github.com/erigontech/callexec/metrics"
)

var (
	framesPushed  = metrics.GetOrCreateCounter("callexec_frames_pushed")
	framesResumed = metrics.GetOrCreateCounter("callexec_frames_resumed")
	gasUsedTotal  = metrics.GetOrCreateCounter("callexec_gas_used")
	stackDepth    = metrics.GetOrCreateHistogram("callexec_stack_depth", metrics.ExponentialBuckets(1, 2, 11)...)
)

var errCancelled = errors.New("cancelled")

// Stats counts what an Executive did with its explicit stack. The root frame
// is included when it had to be pushed.
type Stats struct {
	Pushes   int
	Pops     int
	Resumes  int
	MaxDepth int
}

// Executive drives one top-level call or create to completion. Nested calls
// are not run through Go recursion: every frame that executes code lives on
// an explicit stack, a frame that suspends waits there until the child it
// asked for is done, and the child's outcome is fed back into it.
//
// An Executive is used for a single request and is not thread safe, apart from
// Cancel.
type Executive struct {
	ibs      IntraBlockState
	builtins *BuiltinTable
	cfg      Config
	logger   log.Logger

	stack    *Stack
	stats    Stats
	startGas uint64
	used     bool

	// abort is used to stop the loop between two steps
	abort atomic.Bool
}

// NewExecutive returns an executive over ibs. A nil logger selects the root
// logger.
func NewExecutive(ibs IntraBlockState, builtins *BuiltinTable, cfg Config, logger log.Logger) *Executive {
	if logger == nil {
		logger = log.Root()
	}
	if cfg.Factory == nil {
		cfg.Factory = NewFactory(nil, nil)
	}
	return &Executive{
		ibs:      ibs,
		builtins: builtins,
		cfg:      cfg,
		logger:   logger,
		stack:    newStack(),
	}
}

// ExecuteTopLevel runs a single request on a fresh Executive.
func ExecuteTopLevel(ctx context.Context, ibs IntraBlockState, builtins *BuiltinTable, cfg Config, p *ActionParams) (*Outcome, error) {
	return NewExecutive(ibs, builtins, cfg, nil).Execute(ctx, p)
}

// Cancel aborts the request at the next step boundary. It may be called
// concurrently and more than once.
func (e *Executive) Cancel() { e.abort.Store(true) }

// Cancelled returns true if Cancel has been called
func (e *Executive) Cancelled() bool { return e.abort.Load() }

func (e *Executive) Stats() Stats { return e.stats }

// Depth returns the current number of frames on the stack.
func (e *Executive) Depth() int {
	if e.stack == nil {
		return 0
	}
	return e.stack.Len()
}

// Execute runs p to completion. Contract-level failures come back as a
// failed Outcome; the returned error is reserved for aborts and engine faults,
// in which case every state change made by the request has been rolled back.
func (e *Executive) Execute(ctx context.Context, p *ActionParams) (*Outcome, error) {
	if e.used {
		return nil, fmt.Errorf("%w: executive reused", ErrInvariantViolation)
	}
	e.used = true
	defer func() {
		returnStack(e.stack)
		e.stack = nil
	}()

	root := *p
	root.Depth = 0
	if root.Origin == (common.Address{}) {
		root.Origin = root.Sender
	}
	e.startGas = root.Gas

	tracer := e.cfg.Tracer
	if tracer != nil && tracer.OnTxStart != nil {
		tracer.OnTxStart(root.Sender, root.Address, root.Type.IsCreate(), root.Input, root.Gas, root.Value.Value())
	}

	snapshot := e.ibs.Snapshot()
	out, err := e.consume(ctx, &root)

	var gasUsed uint64
	if err != nil {
		e.ibs.RevertToSnapshot(snapshot)
		e.logger.Trace("Discarding stack", "frames", e.stack)
		e.stack.Reset()
		gasUsed = e.startGas
		var abortErr *AbortError
		if errors.As(err, &abortErr) {
			gasUsed = abortErr.GasUsed
			e.logger.Debug("Call/create aborted", "gasUsed", gasUsed, "err", abortErr.Err)
		} else {
			e.logger.Error("Call/create failed", "params", &root, "err", err)
		}
	} else {
		gasUsed = e.startGas - out.GasLeft
	}
	gasUsedTotal.AddUint64(gasUsed)
	if tracer != nil && tracer.OnTxEnd != nil {
		tracer.OnTxEnd(gasUsed, err)
	}
	return out, err
}

// consume is the drive-to-completion loop over the explicit stack.
func (e *Executive) consume(ctx context.Context, root *ActionParams) (*Outcome, error) {
	out, err := e.enter(root)
	if err != nil || out != nil {
		return out, err
	}

	// pending is the outcome of the child that was just popped or resolved in
	// place; it is owed to the frame now on top of the stack.
	var pending *Outcome
	for e.stack.Len() > 0 {
		if err := e.checkAbort(ctx, pending); err != nil {
			return nil, err
		}

		top := e.stack.peek()
		var trap *Trap
		if pending != nil {
			child := pending
			pending = nil
			e.stats.Resumes++
			framesResumed.Inc()
			if e.cfg.Tracer != nil && e.cfg.Tracer.OnResume != nil {
				e.cfg.Tracer.OnResume(top.Depth(), child.Err)
			}
			if child.GasLeft > 0 && e.cfg.Tracer != nil && e.cfg.Tracer.OnGasChange != nil {
				e.cfg.Tracer.OnGasChange(top.gasLeft, top.gasLeft+child.GasLeft, tracing.GasChangeCallLeftOverReturned)
			}
			trap, err = top.resume(child, e.ibs)
		} else {
			trap, err = top.run(e.ibs)
		}
		if err != nil {
			return nil, err
		}

		if trap != nil {
			e.logger.Trace("Frame suspended", "depth", top.Depth(), "kind", top.kind, "request", trap.Request.Type, "gasLeft", trap.GasLeft)
			if e.cfg.Tracer != nil && e.cfg.Tracer.OnSuspend != nil {
				e.cfg.Tracer.OnSuspend(top.Depth(), trap.GasLeft)
			}
			childOut, err := e.enter(top.params.child(trap.Request))
			if err != nil {
				return nil, err
			}
			// A child that did not need the stack is already resolved and is
			// handed to its parent on the next turn.
			pending = childOut
			continue
		}

		e.pop()
		out, err := e.finish(top)
		if err != nil {
			return nil, err
		}
		if e.stack.Len() == 0 {
			return out, nil
		}
		pending = out
	}
	return nil, fmt.Errorf("%w: stack drained without a result", ErrInvariantViolation)
}

func (e *Executive) checkAbort(ctx context.Context, pending *Outcome) error {
	var cause error
	if e.abort.Load() {
		cause = errCancelled
	} else if err := ctx.Err(); err != nil {
		cause = err
	}
	if cause == nil {
		return nil
	}

	var unspent uint64
	for _, f := range e.stack.data {
		switch {
		case f.kind.suspended():
			unspent += f.gasLeft
		case f.kind == KindExecCall || f.kind == KindExecCreate:
			unspent += f.params.Gas
		}
	}
	if pending != nil {
		unspent += pending.GasLeft
	}
	gasUsed := e.startGas
	if unspent < gasUsed {
		gasUsed -= unspent
	} else {
		gasUsed = 0
	}
	return &AbortError{GasUsed: gasUsed, Err: cause}
}

// enter classifies a request into a frame and applies its entry effects. It
// returns the outcome when the frame resolved in place; a nil outcome means
// the frame was pushed.
func (e *Executive) enter(p *ActionParams) (*Outcome, error) {
	if p.Type.IsCreate() {
		return e.enterCreate(p)
	}
	return e.enterCall(p)
}

func (e *Executive) enterCall(p *ActionParams) (*Outcome, error) {
	f := &Frame{params: p, startGas: p.Gas, snapshot: -1}
	if b, ok := e.builtins.Lookup(p.CodeAddress); ok {
		f.kind, f.builtin = KindCallBuiltin, b
	} else {
		if p.Code == nil {
			code, err := e.ibs.GetCode(p.CodeAddress)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
			}
			codeHash, err := e.ibs.GetCodeHash(p.CodeAddress)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
			}
			p.SetCode(code, &codeHash)
		}
		f.kind = KindTransfer
		if p.HasCode() {
			f.kind = KindExecCall
		}
	}
	e.captureEnter(f)

	if out := e.precheck(f); out != nil {
		f.done(out)
		return e.finish(f)
	}
	value := p.Value.Transfer()
	if p.Type == Call || p.Type == CallCode {
		canTransfer, err := CanTransfer(e.ibs, p.Sender, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
		}
		if !canTransfer {
			f.done(Failure(ErrInsufficientBalance, p.Gas))
			return e.finish(f)
		}
	}

	f.snapshot = e.ibs.Snapshot()
	if p.Type == Call {
		exist, err := e.ibs.Exist(p.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
		}
		if !exist {
			e.ibs.CreateAccount(p.Address, false)
		}
		Transfer(e.ibs, p.Sender, p.Address, value)
	}
	e.chargeBase(f)

	if f.kind.Atomic() {
		if _, err := f.runAtomic(p.Gas); err != nil {
			return nil, err
		}
		return e.finish(f)
	}
	return e.launch(f)
}

func (e *Executive) enterCreate(p *ActionParams) (*Outcome, error) {
	f := &Frame{kind: KindExecCreate, params: p, startGas: p.Gas, snapshot: -1}

	nonce, err := e.ibs.GetNonce(p.Sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
	}
	if p.Address == (common.Address{}) {
		switch p.Type {
		case Create2:
			p.Address = crypto.CreateAddress2(p.Sender, p.Salt.Bytes32(), p.CodeHash().Bytes())
		default:
			p.Address = crypto.CreateAddress(p.Sender, nonce)
		}
	}
	p.CodeAddress = p.Address
	e.captureEnter(f)

	if out := e.precheck(f); out != nil {
		f.done(out)
		return e.finish(f)
	}
	value := p.Value.Transfer()
	canTransfer, err := CanTransfer(e.ibs, p.Sender, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
	}
	if !canTransfer {
		f.done(Failure(ErrInsufficientBalance, p.Gas))
		return e.finish(f)
	}
	if nonce+1 < nonce {
		f.done(Failure(ErrNonceUintOverflow, p.Gas))
		return e.finish(f)
	}

	// The nonce bump is inside the frame's checkpoint: a failed create leaves
	// the parent's view exactly as it was.
	f.snapshot = e.ibs.Snapshot()
	e.ibs.SetNonce(p.Sender, nonce+1)

	// Ensure there's no existing contract already at the designated address
	collision, err := e.collides(p.Address)
	if err != nil {
		return nil, err
	}
	if collision {
		f.done(Failure(ErrContractAddressCollision, 0))
		return e.finish(f)
	}
	e.ibs.CreateAccount(p.Address, true)
	e.ibs.SetNonce(p.Address, 1)
	Transfer(e.ibs, p.Sender, p.Address, value)
	e.chargeBase(f)

	if !p.HasCode() {
		f.done(Success(nil, p.Gas))
		return e.finish(f)
	}
	return e.launch(f)
}

func (e *Executive) collides(addr common.Address) (bool, error) {
	nonce, err := e.ibs.GetNonce(addr)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
	}
	codeHash, err := e.ibs.GetCodeHash(addr)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
	}
	hasStorage, err := e.ibs.HasStorage(addr)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIntraBlockStateFailed, err)
	}
	return nonce != 0 || (codeHash != (common.Hash{}) && codeHash != EmptyCodeHash) || hasStorage, nil
}

// precheck resolves requests that must not engage anything: static-context
// writes, depth exhaustion and unaffordable base costs.
func (e *Executive) precheck(f *Frame) *Outcome {
	p := f.params
	if p.ReadOnly {
		value := p.Value.Transfer()
		if p.Type.IsCreate() || (p.Type == Call && value != nil && !value.IsZero()) {
			return Failure(ErrWriteProtection, p.Gas)
		}
	}
	if !f.kind.Atomic() && p.Depth+1 > e.cfg.MaxStackDepth {
		return Failure(ErrDepth, p.Gas)
	}
	if p.Gas < e.baseCost(f.kind) {
		return Failure(ErrOutOfGas, 0)
	}
	return nil
}

func (e *Executive) baseCost(kind FrameKind) uint64 {
	costs := e.cfg.baseCosts()
	switch kind {
	case KindTransfer:
		return costs.Transfer
	case KindExecCall:
		return costs.Call
	case KindExecCreate:
		return costs.Create
	default:
		return 0
	}
}

func (e *Executive) chargeBase(f *Frame) {
	cost := e.baseCost(f.kind)
	if cost == 0 {
		return
	}
	old := f.params.Gas
	f.params.Gas -= cost
	if e.cfg.Tracer != nil && e.cfg.Tracer.OnGasChange != nil {
		e.cfg.Tracer.OnGasChange(old, f.params.Gas, tracing.GasChangeCallBaseCost)
	}
}

// launch attaches the executor for the frame's code and pushes it.
func (e *Executive) launch(f *Frame) (*Outcome, error) {
	p := f.params
	if e.cfg.NoRecursion && p.Depth > 0 {
		f.done(Success(nil, p.Gas))
		return e.finish(f)
	}
	executor, set, err := e.cfg.Factory.Executor(p)
	if err != nil {
		f.done(Failure(fmt.Errorf("%w: %w", ErrExecutionFault, err), 0))
		return e.finish(f)
	}
	f.executor, f.set = executor, set
	e.push(f)
	return nil, nil
}

func (e *Executive) push(f *Frame) {
	e.stack.push(f)
	e.stats.Pushes++
	if e.stack.Len() > e.stats.MaxDepth {
		e.stats.MaxDepth = e.stack.Len()
	}
	framesPushed.Inc()
	stackDepth.Observe(float64(e.stack.Len()))
	e.logger.Trace("Frame pushed", "depth", f.Depth(), "kind", f.kind, "set", f.set, "to", f.params.Address)
}

func (e *Executive) pop() {
	e.stack.pop()
	e.stats.Pops++
}

// finish settles a done frame: created code is installed, a failure rolls back
// the frame's checkpoint and the refund policy decides what gas survives.
func (e *Executive) finish(f *Frame) (*Outcome, error) {
	if f.kind != KindDone || f.outcome == nil {
		return nil, fmt.Errorf("%w: finishing %s frame", ErrInvariantViolation, f.kind)
	}
	out := *f.outcome
	if out.GasLeft > f.startGas {
		return nil, fmt.Errorf("%w: %s returned %d gas out of %d", ErrInvariantViolation, f, out.GasLeft, f.startGas)
	}
	if out.Err == nil && f.params.Type.IsCreate() {
		out = e.depositCode(f, out)
	}
	if out.Err != nil {
		if f.snapshot >= 0 {
			e.ibs.RevertToSnapshot(f.snapshot)
		}
		if gas := e.cfg.RefundPolicy.gasLeft(&out); gas != out.GasLeft {
			if e.cfg.Tracer != nil && e.cfg.Tracer.OnGasChange != nil {
				e.cfg.Tracer.OnGasChange(out.GasLeft, gas, tracing.GasChangeCallFailedExecution)
			}
			out.GasLeft = gas
		}
		e.logger.Debug("Frame failed", "depth", f.Depth(), "type", f.params.Type, "to", f.params.Address, "reason", FailureReason(out.Err), "err", out.Err)
	}
	f.outcome = &out

	e.captureExit(f)
	metrics.GetOrCreateCounter(fmt.Sprintf(`callexec_outcomes{result="%s"}`, FailureReason(out.Err))).Inc()
	return &out, nil
}

func (e *Executive) depositCode(f *Frame, out Outcome) Outcome {
	code := out.ReturnData
	// EIP-170: Contract code size limit
	if len(code) > e.cfg.maxCodeSize() {
		return Outcome{Err: ErrMaxCodeSizeExceeded, GasLeft: out.GasLeft}
	}
	createDataGas := uint64(len(code)) * params.CreateDataGas
	if out.GasLeft < createDataGas {
		return Outcome{Err: ErrCodeStoreOutOfGas, GasLeft: out.GasLeft}
	}
	e.ibs.SetCode(f.params.Address, code)
	if createDataGas > 0 && e.cfg.Tracer != nil && e.cfg.Tracer.OnGasChange != nil {
		e.cfg.Tracer.OnGasChange(out.GasLeft, out.GasLeft-createDataGas, tracing.GasChangeCallCodeStorage)
	}
	return Outcome{GasLeft: out.GasLeft - createDataGas, ContractAddress: f.params.Address}
}

func (e *Executive) captureEnter(f *Frame) {
	tracer := e.cfg.Tracer
	if tracer == nil || tracer.OnEnter == nil {
		return
	}
	p := f.params
	// An apparent value never moves, so it is not reported.
	value := p.Value.Transfer()
	tracer.OnEnter(p.Depth, byte(p.Type), p.Sender, p.CodeAddress, f.kind == KindCallBuiltin, p.Input, p.Gas, value, p.Code)
}

func (e *Executive) captureExit(f *Frame) {
	tracer := e.cfg.Tracer
	if tracer == nil || tracer.OnExit == nil {
		return
	}
	out := f.outcome
	tracer.OnExit(f.Depth(), out.ReturnData, f.startGas-out.GasLeft, out.Err, out.Err != nil)
}

// EmptyCodeHash is the known hash of the empty EVM bytecode.
var EmptyCodeHash = crypto.Keccak256Hash(nil)
