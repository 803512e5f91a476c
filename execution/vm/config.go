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

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/params"

	"github.com/erigontech/callexec/execution/tracing"
)

// RefundPolicy decides how much of a failed child's unused gas goes back to
// its parent.
type RefundPolicy uint8

const (
	// RefundOnRevert returns unused gas for reverts only; every other failure
	// after the child started running burns its gas.
	RefundOnRevert RefundPolicy = iota
	// RefundAll returns whatever gas the failed child reports.
	RefundAll
	// RefundNone burns the gas of every failed child, reverts included.
	RefundNone
)

func (p RefundPolicy) String() string {
	switch p {
	case RefundOnRevert:
		return "revert"
	case RefundAll:
		return "all"
	case RefundNone:
		return "none"
	default:
		return fmt.Sprintf("RefundPolicy(%d)", uint8(p))
	}
}

func (p *RefundPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "revert", "on-revert", "":
		*p = RefundOnRevert
	case "all":
		*p = RefundAll
	case "none":
		*p = RefundNone
	default:
		return fmt.Errorf("unknown refund policy %q", text)
	}
	return nil
}

func (p RefundPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// gasLeft applies the policy to a finished frame's outcome.
func (p RefundPolicy) gasLeft(out *Outcome) uint64 {
	if out.Err == nil || preExecution(out.Err) {
		return out.GasLeft
	}
	switch p {
	case RefundAll:
		return out.GasLeft
	case RefundNone:
		return 0
	default:
		if out.Reverted() {
			return out.GasLeft
		}
		return 0
	}
}

// BaseCosts is the gas a frame must be able to pay before anything runs.
type BaseCosts struct {
	Transfer uint64 `toml:"transfer"`
	Call     uint64 `toml:"call"`
	Create   uint64 `toml:"create"`
}

var DefaultBaseCosts = BaseCosts{
	Transfer: params.CallStipend,
	Call:     params.CallGasEIP150,
	Create:   params.CreateGas,
}

// Config are the configuration options for the call/create engine.
type Config struct {
	// MaxStackDepth bounds the number of frames on the explicit stack.
	// Zero means no frame running code can ever be pushed.
	MaxStackDepth int
	RefundPolicy  RefundPolicy
	BaseCosts     *BaseCosts // nil selects DefaultBaseCosts
	MaxCodeSize   datasize.ByteSize
	// NoRecursion resolves every nested request to an empty success without
	// running it.
	NoRecursion bool

	Factory *Factory
	Tracer  *tracing.Hooks
}

// DefaultConfig returns the mainnet-like settings.
func DefaultConfig() Config {
	return Config{
		MaxStackDepth: int(params.CallCreateDepth),
		RefundPolicy:  RefundOnRevert,
		MaxCodeSize:   datasize.ByteSize(params.MaxCodeSize),
	}
}

func (cfg *Config) baseCosts() BaseCosts {
	if cfg.BaseCosts == nil {
		return DefaultBaseCosts
	}
	return *cfg.BaseCosts
}

func (cfg *Config) maxCodeSize() int {
	if cfg.MaxCodeSize == 0 {
		return params.MaxCodeSize
	}
	return int(cfg.MaxCodeSize.Bytes())
}
