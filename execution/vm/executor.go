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

//go:generate mockgen -typed=true -destination=./mock_executor.go -package=vm . Executor,Builtin

// ResumeToken is the opaque continuation an Executor hands out when it
// suspends. Only the executor that produced it can interpret it. A token is
// valid for exactly one Resume.
type ResumeToken interface{}

// Trap is the suspension signal: the running code asked for a nested call or
// create and cannot continue until its outcome is known.
type Trap struct {
	Request *ActionParams
	Token   ResumeToken
	// GasLeft is what the suspended frame keeps for itself after forwarding
	// Request.Gas to the child.
	GasLeft uint64
}

// Result is what an Executor returns from Run or Resume: exactly one of
// Outcome (completed) or Trap (suspended) is set.
type Result struct {
	Outcome *Outcome
	Trap    *Trap
}

func Completed(o *Outcome) Result { return Result{Outcome: o} }

func Suspended(t *Trap) Result { return Result{Trap: t} }

// Executor interprets bytecode of one instruction set. It never walks the
// call stack itself: a nested call/create is reported as a Trap and the
// orchestrator later resumes the paused interpreter with the child's outcome.
//
// Errors returned by Run and Resume are turned into ErrExecutionFault
// outcomes, except fatal ones (see IsFatal) which abort the request.
type Executor interface {
	Run(p *ActionParams, ibs IntraBlockState) (Result, error)
	Resume(token ResumeToken, child *Outcome, ibs IntraBlockState) (Result, error)
}
