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
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// InstructionSet identifies which executor understands a code blob.
type InstructionSet uint8

const (
	EVMInstructions InstructionSet = iota
	WasmInstructions
	// InvalidInstructions marks code that claims to be wasm but carries an
	// unsupported header.
	InvalidInstructions
)

func (s InstructionSet) String() string {
	switch s {
	case EVMInstructions:
		return "evm"
	case WasmInstructions:
		return "wasm"
	default:
		return "invalid"
	}
}

var (
	wasmMagic   = []byte{0x00, 'a', 's', 'm'}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

// DetectInstructionSet inspects the code header.
func DetectInstructionSet(code []byte) InstructionSet {
	if !bytes.HasPrefix(code, wasmMagic) {
		return EVMInstructions
	}
	if len(code) < 8 || !bytes.Equal(code[4:8], wasmVersion) {
		return InvalidInstructions
	}
	return WasmInstructions
}

const InstructionSetCacheLimit = 4096

// Factory hands out the executor for a piece of code. Detection results are
// cached by code hash.
type Factory struct {
	EVM  Executor
	Wasm Executor

	cache *lru.Cache[common.Hash, InstructionSet]
}

func NewFactory(evm, wasm Executor) *Factory {
	cache, err := lru.New[common.Hash, InstructionSet](InstructionSetCacheLimit)
	if err != nil {
		panic(fmt.Errorf("could not create instruction set cache: %w", err))
	}
	return &Factory{EVM: evm, Wasm: wasm, cache: cache}
}

// Executor returns the executor for p's code.
func (f *Factory) Executor(p *ActionParams) (Executor, InstructionSet, error) {
	set := f.instructionSet(p)
	var e Executor
	switch set {
	case EVMInstructions:
		e = f.EVM
	case WasmInstructions:
		e = f.Wasm
	}
	if e == nil {
		return nil, set, fmt.Errorf("%w: %s", ErrUnknownInstructionSet, set)
	}
	return e, set, nil
}

func (f *Factory) instructionSet(p *ActionParams) InstructionSet {
	if f.cache == nil {
		return DetectInstructionSet(p.Code)
	}
	hash := p.CodeHash()
	if set, ok := f.cache.Get(hash); ok {
		return set
	}
	set := DetectInstructionSet(p.Code)
	f.cache.Add(hash, set)
	return set
}
