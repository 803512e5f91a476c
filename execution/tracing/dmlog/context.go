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

package dmlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/erigontech/callexec/execution/tracing"
	"github.com/erigontech/callexec/execution/vm"
)

type Instrumentation uint8

const (
	None Instrumentation = iota
	BlockProgress
	Full
)

func (i Instrumentation) String() string {
	switch i {
	case Full:
		return "full"
	case BlockProgress:
		return "block_progress"
	default:
		return "none"
	}
}

func (i *Instrumentation) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "full":
		*i = Full
	case "block_progress", "block-progress":
		*i = BlockProgress
	case "none", "":
		*i = None
	default:
		return fmt.Errorf("unknown instrumentation %q", text)
	}
	return nil
}

// Context tracks the call indexes of one request at a time. It is driven by
// the hooks returned from Hooks and is not thread safe.
type Context struct {
	instrumentation Instrumentation
	printer         Printer

	callIndex uint64
	// open holds the indexes of the frames that have been entered and not
	// exited yet, innermost last.
	open []uint64
}

func NewContext(instrumentation Instrumentation, printer Printer) *Context {
	if printer == nil {
		printer = DiscardPrinter{}
	}
	return &Context{instrumentation: instrumentation, printer: printer}
}

func Noop() *Context { return NewContext(None, DiscardPrinter{}) }

func (ctx *Context) IsEnabled() bool { return ctx.instrumentation == Full }

func (ctx *Context) IsFinalizeBlockEnabled() bool {
	return ctx.instrumentation == Full || ctx.instrumentation == BlockProgress
}

func (ctx *Context) StartBlock(num uint64) {
	ctx.printer.Print(fmt.Sprintf("BEGIN_BLOCK %d", num))
}

func (ctx *Context) FinalizeBlock(num uint64) {
	ctx.printer.Print(fmt.Sprintf("FINALIZE_BLOCK %d", num))
}

func (ctx *Context) EndBlock(num uint64, size int) {
	ctx.printer.Print(fmt.Sprintf("END_BLOCK %d %d", num, size))
}

func (ctx *Context) StartTransaction(from, to common.Address, create bool, input []byte, gas uint64, value *uint256.Int) {
	ctx.callIndex = 0
	ctx.open = ctx.open[:0]
	if create {
		to = common.Address{}
	}
	ctx.printer.Print(fmt.Sprintf("BEGIN_APPLY_TRX %s %s %d %s", Address(to), Uint256(value), gas, Hex(input)))
	ctx.printer.Print(fmt.Sprintf("TRX_FROM %s", Address(from)))
}

func (ctx *Context) EndTransaction(gasUsed uint64, err error) {
	if err != nil {
		ctx.printer.Print(fmt.Sprintf("END_APPLY_TRX %d %s", gasUsed, failedReason(err)))
		return
	}
	ctx.printer.Print(fmt.Sprintf("END_APPLY_TRX %d", gasUsed))
}

func (ctx *Context) enter(depth int, typ byte, from, to common.Address, builtin bool, input []byte, gas uint64, value *uint256.Int, code []byte) {
	ctx.callIndex++
	index := ctx.callIndex
	ctx.open = append(ctx.open, index)
	callType := CallType(vm.ActionType(typ))
	ctx.printer.Print(fmt.Sprintf("EVM_RUN_CALL %s %d", callType, index))
	ctx.printer.Print(fmt.Sprintf("EVM_PARAM %s %d %s %s %s %d %s", callType, index, Address(from), Address(to), Uint256(value), gas, Hex(input)))
}

func (ctx *Context) exit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	index := ctx.top()
	if len(ctx.open) > 0 {
		ctx.open = ctx.open[:len(ctx.open)-1]
	}
	if err != nil {
		ctx.printer.Print(fmt.Sprintf("EVM_CALL_FAILED %d %d %s", index, gasUsed, failedReason(err)))
		return
	}
	ctx.printer.Print(fmt.Sprintf("EVM_END_CALL %d %d %s", index, gasUsed, Hex(output)))
}

func (ctx *Context) suspend(depth int, gasLeft uint64) {
	ctx.printer.Print(fmt.Sprintf("EVM_SUSPEND %d", ctx.top()))
}

func (ctx *Context) resume(depth int, childErr error) {
	ctx.printer.Print(fmt.Sprintf("EVM_RESUME %d", ctx.top()))
}

func (ctx *Context) top() uint64 {
	if len(ctx.open) == 0 {
		return 0
	}
	return ctx.open[len(ctx.open)-1]
}

// Hooks returns the tracing hooks feeding this context, or nil when the
// instrumentation level does not cover calls.
func (ctx *Context) Hooks() *tracing.Hooks {
	if !ctx.IsEnabled() {
		return nil
	}
	return &tracing.Hooks{
		OnTxStart: ctx.StartTransaction,
		OnTxEnd:   ctx.EndTransaction,
		OnEnter:   ctx.enter,
		OnExit:    ctx.exit,
		OnSuspend: ctx.suspend,
		OnResume:  ctx.resume,
	}
}

// CallType is the dmlog name of an action type.
func CallType(t vm.ActionType) string {
	switch t {
	case vm.Call:
		return "CALL"
	case vm.CallCode:
		return "CALLCODE"
	case vm.DelegateCall:
		return "DELEGATE"
	case vm.StaticCall:
		return "STATIC"
	case vm.Create:
		return "CREATE"
	case vm.Create2:
		return "CREATE2"
	default:
		return "UNKNOWN"
	}
}

func failedReason(err error) string {
	switch {
	case errors.Is(err, vm.ErrAborted):
		return "aborted"
	case vm.IsFatal(err):
		return "fatal"
	default:
		return vm.FailureReason(err)
	}
}

// Address formats a as lowercase hex without prefix, "." when zero.
func Address(a common.Address) string {
	if a == (common.Address{}) {
		return "."
	}
	return common.Bytes2Hex(a[:])
}

// Hex formats b as lowercase hex without prefix, "." when empty.
func Hex(b []byte) string {
	if len(b) == 0 {
		return "."
	}
	return common.Bytes2Hex(b)
}

// Uint256 formats v as minimal lowercase hex without prefix, "." when zero.
func Uint256(v *uint256.Int) string {
	if v == nil || v.IsZero() {
		return "."
	}
	return strings.TrimPrefix(v.Hex(), "0x")
}
