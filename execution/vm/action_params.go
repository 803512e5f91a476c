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
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ActionType is the kind of call or create requested.
type ActionType uint8

const (
	Call ActionType = iota
	CallCode
	DelegateCall
	StaticCall
	Create
	Create2
)

func (t ActionType) IsCreate() bool { return t == Create || t == Create2 }

func (t ActionType) String() string {
	switch t {
	case Call:
		return "CALL"
	case CallCode:
		return "CALLCODE"
	case DelegateCall:
		return "DELEGATECALL"
	case StaticCall:
		return "STATICCALL"
	case Create:
		return "CREATE"
	case Create2:
		return "CREATE2"
	default:
		return fmt.Sprintf("ActionType(%d)", uint8(t))
	}
}

func (t ActionType) MarshalText() ([]byte, error) { return []byte(strings.ToLower(t.String())), nil }

func (t *ActionType) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "CALL", "":
		*t = Call
	case "CALLCODE":
		*t = CallCode
	case "DELEGATECALL", "DELEGATE":
		*t = DelegateCall
	case "STATICCALL", "STATIC":
		*t = StaticCall
	case "CREATE":
		*t = Create
	case "CREATE2":
		*t = Create2
	default:
		return fmt.Errorf("unknown action type %q", text)
	}
	return nil
}

// ActionValue is the value attached to an action. A transfer value is moved
// from sender to receiver; an apparent value is only visible to the code
// (DELEGATECALL inherits the parent's value without moving it).
type ActionValue struct {
	value    uint256.Int
	apparent bool
}

func TransferValue(v *uint256.Int) ActionValue {
	var av ActionValue
	if v != nil {
		av.value.Set(v)
	}
	return av
}

func ApparentValue(v *uint256.Int) ActionValue {
	av := TransferValue(v)
	av.apparent = true
	return av
}

// Value returns the amount regardless of whether it is transferred.
func (v ActionValue) Value() *uint256.Int { return new(uint256.Int).Set(&v.value) }

func (v ActionValue) IsApparent() bool { return v.apparent }

// Transfer returns the amount to move, or nil for apparent values.
func (v ActionValue) Transfer() *uint256.Int {
	if v.apparent {
		return nil
	}
	return v.Value()
}

func (v ActionValue) String() string {
	if v.apparent {
		return "apparent:" + v.value.Dec()
	}
	return v.value.Dec()
}

// ActionParams are the inputs of one call or create. Everything not listed
// here is reached through IntraBlockState.
type ActionParams struct {
	// CodeAddress is the account whose code is executed.
	CodeAddress common.Address
	// Address is the receiving account. It equals CodeAddress except for
	// CALLCODE and DELEGATECALL. For creates it is filled in by the
	// orchestrator.
	Address common.Address
	Sender  common.Address
	Origin  common.Address

	Gas      uint64
	GasPrice uint256.Int
	Value    ActionValue

	// Code is resolved from state for calls when nil.
	Code     []byte
	codeHash *common.Hash
	Input    []byte

	Type     ActionType
	Salt     uint256.Int // CREATE2 only
	ReadOnly bool

	// Depth is assigned by the orchestrator; the root runs at 0.
	Depth int
}

// HasCode reports whether there is code to execute. Genesis accounts carry an
// empty code slice rather than none at all, so length is what matters.
func (p *ActionParams) HasCode() bool { return len(p.Code) > 0 }

// CodeHash returns the keccak256 of Code, computing it once.
func (p *ActionParams) CodeHash() common.Hash {
	if p.codeHash == nil {
		h := crypto.Keccak256Hash(p.Code)
		p.codeHash = &h
	}
	return *p.codeHash
}

// SetCode replaces the code and drops the cached hash.
func (p *ActionParams) SetCode(code []byte, hash *common.Hash) {
	p.Code = code
	p.codeHash = hash
}

// child derives the parameters of a nested request, inheriting what the
// callee cannot choose.
func (p *ActionParams) child(req *ActionParams) *ActionParams {
	c := *req
	c.Origin = p.Origin
	c.GasPrice = p.GasPrice
	c.Depth = p.Depth + 1
	c.ReadOnly = p.ReadOnly || req.ReadOnly || req.Type == StaticCall
	if c.Sender == (common.Address{}) || c.Type.IsCreate() {
		c.Sender = p.Address
	}
	return &c
}

func (p *ActionParams) String() string {
	to := p.Address.Hex()
	if p.Type.IsCreate() && p.Address == (common.Address{}) {
		to = "new"
	}
	return fmt.Sprintf("%s depth=%d from=%s to=%s gas=%d value=%s input=%d", p.Type, p.Depth, p.Sender.Hex(), to, p.Gas, p.Value, len(p.Input))
}
