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

// Package batch executes independent top-level requests concurrently, each
// against its own copy of a base state.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/tracing"
	"github.com/erigontech/callexec/execution/vm"
	"github.com/erigontech/callexec/metrics"
)

var (
	batchInflight = metrics.GetOrCreateGauge("callexec_batch_inflight")
	batchDuration = metrics.GetOrCreateHistogram("callexec_batch_request_seconds")
)

type Options struct {
	// Workers bounds the requests running at once; 0 selects GOMAXPROCS.
	Workers  int
	Config   vm.Config
	Builtins *vm.BuiltinTable
	Logger   log.Logger
	// Tracer, when set, returns the hooks for request i. Hooks must not be
	// shared between requests unless they are thread safe.
	Tracer func(i int) *tracing.Hooks
}

// Result is the outcome of one request and the state it left behind.
type Result struct {
	Outcome *vm.Outcome
	State   *state.IntraBlockState
	Stats   vm.Stats
}

// Run executes reqs and returns their results in request order. A fatal error
// in any request cancels the ones still running and is returned; the results
// are nil in that case.
func Run(ctx context.Context, base *state.IntraBlockState, reqs []*vm.ActionParams, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Root()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// base is only read here, before any goroutine starts
	results := make([]Result, len(reqs))
	for i := range reqs {
		results[i].State = base.Copy()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			batchInflight.Inc()
			defer batchInflight.Dec()
			defer batchDuration.UpdateDuration(time.Now())

			cfg := opts.Config
			if opts.Tracer != nil {
				cfg.Tracer = opts.Tracer(i)
			}
			ibs := results[i].State
			e := vm.NewExecutive(ibs, opts.Builtins, cfg, logger.New("req", i))
			out, err := e.Execute(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			if err := ibs.Error(); err != nil {
				return fmt.Errorf("request %d: %w: %w", i, vm.ErrIntraBlockStateFailed, err)
			}
			ibs.FinalizeTx()
			results[i].Outcome = out
			results[i].Stats = e.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
