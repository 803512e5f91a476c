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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newExecFrame(t *testing.T) (*Frame, *MockExecutor) {
	ctrl := gomock.NewController(t)
	executor := NewMockExecutor(ctrl)
	return &Frame{
		kind:     KindExecCall,
		params:   &ActionParams{Gas: 1000},
		executor: executor,
		startGas: 1000,
		snapshot: -1,
	}, executor
}

func TestFrameSuspendAndResumeOnce(t *testing.T) {
	f, executor := newExecFrame(t)
	req := &ActionParams{Type: Call, Gas: 400}
	child := Success([]byte{0x01}, 400)

	executor.EXPECT().Run(f.params, nil).Return(Suspended(&Trap{Request: req, Token: "k", GasLeft: 600}), nil)
	executor.EXPECT().Resume("k", child, nil).Return(Completed(Success(nil, 1000)), nil)

	trap, err := f.run(nil)
	require.NoError(t, err)
	require.NotNil(t, trap)
	assert.Equal(t, KindResumeCall, f.Kind())
	assert.Equal(t, uint64(600), f.gasLeft)

	_, err = f.run(nil)
	require.ErrorIs(t, err, ErrInvariantViolation)

	trap, err = f.resume(child, nil)
	require.NoError(t, err)
	assert.Nil(t, trap)
	assert.Equal(t, KindDone, f.Kind())
	assert.Equal(t, uint64(1000), f.Outcome().GasLeft)

	_, err = f.resume(child, nil)
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestFrameTokenIsSingleUse(t *testing.T) {
	f, executor := newExecFrame(t)
	req := &ActionParams{Type: Call}
	executor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(Suspended(&Trap{Request: req, Token: 1}), nil)
	executor.EXPECT().Resume(1, gomock.Any(), gomock.Any()).Return(Result{}, errors.New("boom"))

	_, err := f.run(nil)
	require.NoError(t, err)

	// a failing resume still consumes the token
	f.kind = KindResumeCall
	_, err = f.resume(Success(nil, 0), nil)
	require.NoError(t, err)
	require.Equal(t, KindDone, f.Kind())
	require.ErrorIs(t, f.Outcome().Err, ErrExecutionFault)

	f.kind = KindResumeCall
	_, err = f.resume(Success(nil, 0), nil)
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestFrameResumeRequiresChild(t *testing.T) {
	f, _ := newExecFrame(t)
	f.kind, f.token = KindResumeCreate, "k"
	_, err := f.resume(nil, nil)
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, "k", f.token)
}

func TestFrameAdvance(t *testing.T) {
	tests := []struct {
		name  string
		res   Result
		err   error
		fatal bool
		fault bool
	}{
		{name: "both", res: Result{Outcome: Success(nil, 0), Trap: &Trap{Request: &ActionParams{}, Token: 1}}, fatal: true},
		{name: "neither", res: Result{}, fatal: true},
		{name: "trap without request", res: Suspended(&Trap{Token: 1}), fatal: true},
		{name: "trap without token", res: Suspended(&Trap{Request: &ActionParams{}}), fatal: true},
		{name: "fatal error", err: ErrIntraBlockStateFailed, fatal: true},
		{name: "executor error", err: errors.New("bad opcode"), fault: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newExecFrame(t)
			_, err := f.advance(tt.res, tt.err)
			if tt.fatal {
				require.Error(t, err)
				assert.True(t, IsFatal(err))
				return
			}
			require.NoError(t, err)
			if tt.fault {
				require.ErrorIs(t, f.Outcome().Err, ErrExecutionFault)
				assert.Zero(t, f.Outcome().GasLeft)
			}
		})
	}
}

func TestFrameAtomic(t *testing.T) {
	f := &Frame{kind: KindTransfer, params: &ActionParams{}}
	out, err := f.runAtomic(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), out.GasLeft)
	assert.Equal(t, KindDone, f.Kind())

	f = &Frame{kind: KindCallBuiltin, params: &ActionParams{Input: []byte{1, 2}}, builtin: BuiltinFunc{Gas: 3, Fn: func(in []byte) ([]byte, error) { return in, nil }}}
	out, err = f.runAtomic(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, out.ReturnData)
	assert.Equal(t, uint64(2), out.GasLeft)

	f = &Frame{kind: KindExecCall, params: &ActionParams{}}
	_, err = f.runAtomic(5)
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestStack(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	a := &Frame{kind: KindResumeCall, params: &ActionParams{}}
	b := &Frame{kind: KindExecCall, params: &ActionParams{Depth: 1}}
	st.push(a)
	st.push(b)
	assert.Equal(t, 2, st.Len())
	assert.Same(t, b, st.peek())
	assert.Same(t, a, st.Back(1))
	assert.Equal(t, "ResumeCall <- ExecCall", st.String())
	assert.Same(t, b, st.pop())
	assert.Equal(t, 1, st.Len())
}

func TestFrameTrapGasIsBounded(t *testing.T) {
	f, executor := newExecFrame(t)
	executor.EXPECT().Run(f.params, nil).Return(Suspended(&Trap{Request: &ActionParams{Type: Call, Gas: 401}, Token: "k", GasLeft: 600}), nil)

	_, err := f.run(nil)
	require.ErrorIs(t, err, ErrInvariantViolation)

	f, executor = newExecFrame(t)
	executor.EXPECT().Run(f.params, nil).Return(Suspended(&Trap{Request: &ActionParams{Type: Call, Gas: 1000}, Token: "a"}), nil)
	executor.EXPECT().Resume("a", gomock.Any(), nil).Return(Suspended(&Trap{Request: &ActionParams{Type: Call, Gas: 300}, Token: "b", GasLeft: 1}), nil)

	_, err = f.run(nil)
	require.NoError(t, err)
	// the child handed back 300, so 301 is one too many
	_, err = f.resume(Success(nil, 300), nil)
	require.ErrorIs(t, err, ErrInvariantViolation)
}
