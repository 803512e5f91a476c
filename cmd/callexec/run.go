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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/callexec/execution/batch"
	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/tracing"
	"github.com/erigontech/callexec/execution/tracing/dmlog"
	"github.com/erigontech/callexec/execution/vm"
	"github.com/erigontech/callexec/execution/vm/scriptvm"
	"github.com/erigontech/callexec/metrics"
)

func engineConfig(sc *Scenario, logger log.Logger) vm.Config {
	cfg := sc.Config()
	cfg.Factory = vm.NewFactory(scriptvm.New(logger), nil)
	return cfg
}

// signalContext is cancelled on SIGINT or SIGTERM; a running request is then
// aborted at its next step.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// instrumentation reads the dmlog level requested on the command line.
func instrumentation(cliCtx *cli.Context) (dmlog.Instrumentation, error) {
	var level dmlog.Instrumentation
	if err := level.UnmarshalText([]byte(cliCtx.String(DMLogFlag.Name))); err != nil {
		return dmlog.None, err
	}
	return level, nil
}

func runScenario(cliCtx *cli.Context) error {
	logger := log.Root()
	sc, err := LoadScenario(cliCtx.String(ConfigFlag.Name))
	if err != nil {
		return err
	}
	level, err := instrumentation(cliCtx)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cliCtx.Context)
	defer cancel()

	rep, err := execScenario(ctx, sc, os.Stdout, level, cliCtx.Bool(DumpFlag.Name), logger)
	if err != nil {
		return err
	}
	return finish(cliCtx, rep)
}

// execScenario runs every request of sc in order on one state. dmlog lines,
// when enabled, go to out.
func execScenario(ctx context.Context, sc *Scenario, out io.Writer, level dmlog.Instrumentation, dump bool, logger log.Logger) (*report, error) {
	ibs := state.NewFromAlloc(sc.Alloc())
	defer ibs.Release()
	return execOn(ctx, sc, ibs, out, level, dump, logger)
}

// execOn runs the requests of sc as the transactions of one block.
func execOn(ctx context.Context, sc *Scenario, ibs *state.IntraBlockState, out io.Writer, level dmlog.Instrumentation, dump bool, logger log.Logger) (*report, error) {
	cfg := engineConfig(sc, logger)
	dm := dmlog.NewContext(level, dmlog.NewWriterPrinter(out))
	cfg.Tracer = tracing.Combine(cfg.Tracer, dm.Hooks())
	builtins := standardBuiltins()

	if dm.IsEnabled() {
		dm.StartBlock(sc.Block)
	}
	rep := &report{}
	for i := range sc.Requests {
		p := sc.Requests[i].Params()
		snapshot := ibs.Snapshot()
		e := vm.NewExecutive(ibs, builtins, cfg, logger.New("request", i))
		o, err := e.Execute(ctx, p)
		if err == nil && ibs.Error() != nil {
			// a write hit a failed read: its effects cannot be trusted
			ibs.RevertToSnapshot(snapshot)
			err = fmt.Errorf("%w: %w", vm.ErrIntraBlockStateFailed, ibs.Error())
		}
		rep.Results = append(rep.Results, newResult(p, o, e.Stats(), err))
		if errors.Is(err, vm.ErrAborted) {
			return nil, err
		}
		ibs.FinalizeTx()
	}
	if dm.IsFinalizeBlockEnabled() {
		dm.FinalizeBlock(sc.Block)
	}
	if dm.IsEnabled() {
		dm.EndBlock(sc.Block, len(sc.Requests))
	}
	if dump {
		rep.State = ibs.Dump()
	}
	return rep, nil
}

func runBatch(cliCtx *cli.Context) error {
	logger := log.Root()
	sc, err := LoadScenario(cliCtx.String(ConfigFlag.Name))
	if err != nil {
		return err
	}
	level, err := instrumentation(cliCtx)
	if err != nil {
		return err
	}
	workers := cliCtx.Int(WorkersFlag.Name)
	if workers == 0 {
		workers = sc.Engine.Workers
	}
	ctx, cancel := signalContext(cliCtx.Context)
	defer cancel()

	rep, err := execBatch(ctx, sc, os.Stdout, workers, level, cliCtx.Bool(DumpFlag.Name), logger)
	if err != nil {
		return err
	}
	return finish(cliCtx, rep)
}

// execBatch runs the requests of sc concurrently on copies of the pre-state.
// dmlog output is buffered per request and written in request order.
func execBatch(ctx context.Context, sc *Scenario, out io.Writer, workers int, level dmlog.Instrumentation, dump bool, logger log.Logger) (*report, error) {
	reqs := make([]*vm.ActionParams, len(sc.Requests))
	for i := range sc.Requests {
		reqs[i] = sc.Requests[i].Params()
	}
	opts := batch.Options{
		Workers:  workers,
		Config:   engineConfig(sc, logger),
		Builtins: standardBuiltins(),
		Logger:   logger,
	}
	var traces []*bytes.Buffer
	if level == dmlog.Full {
		traces = make([]*bytes.Buffer, len(reqs))
		for i := range traces {
			traces[i] = new(bytes.Buffer)
		}
		opts.Tracer = func(i int) *tracing.Hooks {
			return dmlog.NewContext(level, dmlog.NewWriterPrinter(traces[i])).Hooks()
		}
	}

	base := state.NewFromAlloc(sc.Alloc())
	results, err := batch.Run(ctx, base, reqs, opts)
	if err != nil {
		return nil, err
	}
	for _, buf := range traces {
		if _, err := buf.WriteTo(out); err != nil {
			return nil, err
		}
	}

	rep := &report{}
	for i, r := range results {
		res := newResult(reqs[i], r.Outcome, r.Stats, nil)
		if dump {
			res.State = r.State.Dump()
		}
		r.State.Release()
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

func finish(cliCtx *cli.Context, rep *report) error {
	if err := writeReport(os.Stdout, rep, cliCtx.String(FormatFlag.Name)); err != nil {
		return err
	}
	if cliCtx.Bool(MetricsFlag.Name) {
		return metrics.WritePrometheus(os.Stderr)
	}
	return nil
}
