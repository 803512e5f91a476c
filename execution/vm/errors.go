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
	"errors"
	"fmt"
)

// List of failure reasons a call or create can resolve to. These travel as
// Outcome data and are observable by the parent frame.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrBuiltinDispatch          = errors.New("builtin rejected input")
	ErrExecutionFault           = errors.New("execution fault")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrWriteProtection          = errors.New("write protection")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrUnknownInstructionSet    = errors.New("no executor for instruction set")
)

// Fatal conditions. These abort the whole top-level request and are never
// reported as an Outcome.
var (
	ErrInvariantViolation    = errors.New("call/create invariant violated")
	ErrIntraBlockStateFailed = errors.New("intra block state failed")
	ErrAborted               = errors.New("execution aborted")
)

// IsFatal reports whether err must abort the top-level request.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariantViolation) || errors.Is(err, ErrIntraBlockStateFailed) || errors.Is(err, ErrAborted)
}

// AbortError is returned when a request is cancelled between steps.
type AbortError struct {
	GasUsed uint64
	Err     error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s after %d gas: %v", ErrAborted, e.GasUsed, e.Err)
}

func (e *AbortError) Unwrap() []error { return []error{ErrAborted, e.Err} }

// failureReasons is ordered: the first match wins when an error wraps several.
var failureReasons = []struct {
	err  error
	name string
}{
	{ErrOutOfGas, "out_of_gas"},
	{ErrDepth, "stack_depth_exceeded"},
	{ErrBuiltinDispatch, "builtin_dispatch_error"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrExecutionReverted, "reverted"},
	{ErrContractAddressCollision, "address_collision"},
	{ErrMaxCodeSizeExceeded, "max_code_size_exceeded"},
	{ErrCodeStoreOutOfGas, "code_store_out_of_gas"},
	{ErrWriteProtection, "write_protection"},
	{ErrNonceUintOverflow, "nonce_overflow"},
	{ErrExecutionFault, "executor_fault"},
}

// FailureReason maps an outcome error to a short stable name. Errors outside
// the taxonomy are reported as executor faults, since that is how the
// orchestrator classifies them.
func FailureReason(err error) string {
	if err == nil {
		return "success"
	}
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "executor_fault"
}

// preExecution reports failures raised before the child ran any code. Those
// always give the full gas back to the parent.
func preExecution(err error) bool {
	return errors.Is(err, ErrDepth) || errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrWriteProtection) || errors.Is(err, ErrNonceUintOverflow)
}
