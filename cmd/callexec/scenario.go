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

package main

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pelletier/go-toml/v2"

	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/vm"
)

// Scenario is the TOML description of a pre-state and the requests to run
// against it.
//
//	block = 1
//
//	[engine]
//	max_depth = 1024
//	refund_policy = "revert"
//	max_code_size = "24KB"
//
//	[[accounts]]
//	address = "0x000000000000000000000000000000000000a11c"
//	balance = "1000000"
//
//	[[request]]
//	type = "call"
//	from = "0x000000000000000000000000000000000000a11c"
//	to = "0x0000000000000000000000000000000000000004"
//	gas = 100000
//	input = "0x0102"
type Scenario struct {
	// Block numbers the dmlog block the requests are run in.
	Block    uint64       `toml:"block"`
	Engine   EngineConfig `toml:"engine"`
	Accounts []Account    `toml:"accounts"`
	Requests []Request    `toml:"request"`
}

type EngineConfig struct {
	// MaxDepth is a pointer so that an explicit zero survives decoding.
	MaxDepth     *int              `toml:"max_depth"`
	RefundPolicy vm.RefundPolicy   `toml:"refund_policy"`
	MaxCodeSize  datasize.ByteSize `toml:"max_code_size"`
	NoRecursion  bool              `toml:"no_recursion"`
	BaseCosts    *vm.BaseCosts     `toml:"base_costs"`
	Workers      int               `toml:"workers"`
}

type Account struct {
	Address common.Address    `toml:"address"`
	Balance *uint256.Int      `toml:"balance"`
	Nonce   uint64            `toml:"nonce"`
	Code    hexutil.Bytes     `toml:"code"`
	Storage map[string]string `toml:"storage"`
}

type Request struct {
	Type     vm.ActionType  `toml:"type"`
	From     common.Address `toml:"from"`
	To       common.Address `toml:"to"`
	Gas      uint64         `toml:"gas"`
	GasPrice *uint256.Int   `toml:"gas_price"`
	Value    *uint256.Int   `toml:"value"`
	Input    hexutil.Bytes  `toml:"input"`
	// Code is the init code of creates.
	Code hexutil.Bytes `toml:"code"`
	Salt *uint256.Int  `toml:"salt"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := toml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Requests) == 0 {
		return nil, fmt.Errorf("scenario has no request")
	}
	for i, r := range sc.Requests {
		if r.Gas == 0 {
			return nil, fmt.Errorf("request %d: gas is required", i)
		}
	}
	return &sc, nil
}

// Config turns the engine table into an engine configuration.
func (sc *Scenario) Config() vm.Config {
	cfg := vm.DefaultConfig()
	if sc.Engine.MaxDepth != nil {
		cfg.MaxStackDepth = *sc.Engine.MaxDepth
	}
	cfg.RefundPolicy = sc.Engine.RefundPolicy
	if sc.Engine.MaxCodeSize != 0 {
		cfg.MaxCodeSize = sc.Engine.MaxCodeSize
	}
	cfg.NoRecursion = sc.Engine.NoRecursion
	cfg.BaseCosts = sc.Engine.BaseCosts
	return cfg
}

func (sc *Scenario) Alloc() state.GenesisAlloc {
	alloc := make(state.GenesisAlloc, len(sc.Accounts))
	for _, acc := range sc.Accounts {
		ga := state.GenesisAccount{Balance: acc.Balance, Nonce: acc.Nonce, Code: acc.Code}
		if len(acc.Storage) > 0 {
			ga.Storage = make(map[common.Hash]common.Hash, len(acc.Storage))
			for k, v := range acc.Storage {
				ga.Storage[common.HexToHash(k)] = common.HexToHash(v)
			}
		}
		alloc[acc.Address] = ga
	}
	return alloc
}

// Params builds the top-level action of a request.
func (r *Request) Params() *vm.ActionParams {
	p := &vm.ActionParams{
		Type:   r.Type,
		Sender: r.From,
		Origin: r.From,
		Gas:    r.Gas,
		Value:  vm.TransferValue(r.Value),
		Input:  r.Input,
	}
	if r.GasPrice != nil {
		p.GasPrice.Set(r.GasPrice)
	}
	switch r.Type {
	case vm.Create, vm.Create2:
		p.Code = r.Code
		if r.Salt != nil {
			p.Salt.Set(r.Salt)
		}
	default:
		p.Address, p.CodeAddress = r.To, r.To
		if r.Type == vm.StaticCall {
			p.ReadOnly = true
		}
	}
	return p
}
