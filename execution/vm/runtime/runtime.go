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

package runtime

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/vm"
	"github.com/erigontech/callexec/execution/vm/scriptvm"
)

// Config is a basic type specifying certain configuration flags for running
// a single request.
type Config struct {
	Origin   common.Address
	GasLimit uint64
	GasPrice uint256.Int
	Value    uint256.Int

	EngineConfig vm.Config
	Builtins     *vm.BuiltinTable

	State  *state.IntraBlockState
	Logger log.Logger
}

// sets defaults on the config
func setDefaults(cfg *Config) {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = math.MaxUint64
	}
	if cfg.EngineConfig.MaxStackDepth == 0 {
		cfg.EngineConfig = withDefaults(cfg.EngineConfig)
	}
	if cfg.EngineConfig.Factory == nil {
		interpreter := scriptvm.New(cfg.Logger)
		cfg.EngineConfig.Factory = vm.NewFactory(interpreter, nil)
	}
	if cfg.State == nil {
		cfg.State = state.NewFromAlloc(nil)
	}
}

// withDefaults keeps the hooks, factory and policy of c and fills in the rest
// from vm.DefaultConfig.
func withDefaults(c vm.Config) vm.Config {
	d := vm.DefaultConfig()
	d.RefundPolicy = c.RefundPolicy
	d.NoRecursion = c.NoRecursion
	d.Factory = c.Factory
	d.Tracer = c.Tracer
	if c.BaseCosts != nil {
		d.BaseCosts = c.BaseCosts
	}
	if c.MaxCodeSize != 0 {
		d.MaxCodeSize = c.MaxCodeSize
	}
	return d
}

var contractAsAddress = common.BytesToAddress([]byte("contract"))

// Execute executes the code using the input as call data during the execution.
// It returns the return value, the new state and an error if the request
// failed.
//
// Execute sets up an in-memory, temporary, environment for the execution of
// the given code unless cfg.State is set.
func Execute(code, input []byte, cfg *Config) ([]byte, *state.IntraBlockState, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	cfg.State.CreateAccount(contractAsAddress, true)
	// set the receiver's (the executing contract) code for execution.
	cfg.State.SetCode(contractAsAddress, code)

	ret, _, err := Call(contractAsAddress, input, cfg)
	return ret, cfg.State, err
}

// Create executes the code using the create path.
func Create(input []byte, cfg *Config) ([]byte, common.Address, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	out, err := vm.NewExecutive(cfg.State, cfg.Builtins, cfg.EngineConfig, cfg.Logger).Execute(context.Background(), &vm.ActionParams{
		Type:     vm.Create,
		Sender:   cfg.Origin,
		Origin:   cfg.Origin,
		Gas:      cfg.GasLimit,
		GasPrice: cfg.GasPrice,
		Value:    vm.TransferValue(&cfg.Value),
		Code:     input,
	})
	if err != nil {
		return nil, common.Address{}, 0, err
	}
	return out.ReturnData, out.ContractAddress, out.GasLeft, out.Err
}

// Call executes the code given by the contract's address. It will return the
// return value and the gas left, plus the failure reason if any.
func Call(address common.Address, input []byte, cfg *Config) ([]byte, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	out, err := vm.NewExecutive(cfg.State, cfg.Builtins, cfg.EngineConfig, cfg.Logger).Execute(context.Background(), &vm.ActionParams{
		Type:        vm.Call,
		CodeAddress: address,
		Address:     address,
		Sender:      cfg.Origin,
		Origin:      cfg.Origin,
		Gas:         cfg.GasLimit,
		GasPrice:    cfg.GasPrice,
		Value:       vm.TransferValue(&cfg.Value),
		Input:       input,
	})
	if err != nil {
		return nil, 0, err
	}
	return out.ReturnData, out.GasLeft, out.Err
}
