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

	"github.com/ethereum/go-ethereum/common"
)

// Outcome is the terminal value of a frame. Err == nil is a success; any
// other value is a failure whose reason is one of the errors in errors.go.
// Failures are data: they flow to the parent exactly like successes.
type Outcome struct {
	ReturnData []byte
	GasLeft    uint64
	// ContractAddress is set for successful creates.
	ContractAddress common.Address
	Err             error
}

func Success(ret []byte, gasLeft uint64) *Outcome {
	return &Outcome{ReturnData: ret, GasLeft: gasLeft}
}

func Failure(err error, gasLeft uint64) *Outcome {
	return &Outcome{Err: err, GasLeft: gasLeft}
}

// Revert is a failure that keeps its return data.
func Revert(ret []byte, gasLeft uint64) *Outcome {
	return &Outcome{ReturnData: ret, GasLeft: gasLeft, Err: ErrExecutionReverted}
}

func (o *Outcome) Failed() bool { return o.Err != nil }

func (o *Outcome) Reverted() bool { return errors.Is(o.Err, ErrExecutionReverted) }

func (o *Outcome) String() string {
	if o.Err == nil {
		return fmt.Sprintf("success gas=%d ret=%d", o.GasLeft, len(o.ReturnData))
	}
	return fmt.Sprintf("failure(%s) gas=%d: %v", FailureReason(o.Err), o.GasLeft, o.Err)
}
