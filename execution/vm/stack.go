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
	"strings"
	"sync"
)

var stackPool = sync.Pool{
	New: func() any {
		return &Stack{data: make([]*Frame, 0, 16)}
	},
}

// Stack is the explicit call stack of an Executive. The top is the only
// frame that may advance; every frame below it is suspended on its child.
type Stack struct {
	data []*Frame
}

func newStack() *Stack {
	return stackPool.Get().(*Stack)
}

func (st *Stack) push(f *Frame) {
	// NOTE depth limit is checked on entry, see Executive.precheck
	st.data = append(st.data, f)
}

func (st *Stack) pop() (ret *Frame) {
	ret = st.data[len(st.data)-1]
	st.data[len(st.data)-1] = nil
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) peek() *Frame {
	return st.data[len(st.data)-1]
}

// Back returns the n'th frame from the top
func (st *Stack) Back(n int) *Frame {
	return st.data[len(st.data)-n-1]
}

func (st *Stack) Len() int {
	return len(st.data)
}

func (st *Stack) Reset() {
	clear(st.data)
	st.data = st.data[:0]
}

func returnStack(s *Stack) {
	s.Reset()
	stackPool.Put(s)
}

func (st *Stack) String() string {
	var b strings.Builder
	for i, f := range st.data {
		if i > 0 {
			b.WriteString(" <- ")
		}
		b.WriteString(f.kind.String())
	}
	return b.String()
}
