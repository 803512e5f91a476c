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

// callexec runs call/create scenarios described in TOML files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	ConfigFlag = cli.StringFlag{
		Name:     "config",
		Usage:    "Scenario file (TOML)",
		Required: true,
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 2,
	}
	DMLogFlag = cli.StringFlag{
		Name:  "dmlog",
		Usage: "DMLOG instrumentation written to stdout: none, block_progress or full",
		Value: "none",
	}
	MetricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Write the engine metrics to stderr when done",
	}
	DumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "Include the post state in the report",
	}
	FormatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "Report format: json or table",
		Value: "json",
	}
	WorkersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "Requests run at once, 0 selects the scenario value or GOMAXPROCS",
	}
)

var runCommand = cli.Command{
	Action: runScenario,
	Name:   "run",
	Usage:  "Run the scenario requests one after another on a shared state",
	Flags: []cli.Flag{
		&ConfigFlag,
		&DMLogFlag,
		&DumpFlag,
		&FormatFlag,
	},
}

var batchCommand = cli.Command{
	Action: runBatch,
	Name:   "batch",
	Usage:  "Run the scenario requests concurrently, each on its own copy of the state",
	Flags: []cli.Flag{
		&ConfigFlag,
		&DMLogFlag,
		&DumpFlag,
		&FormatFlag,
		&WorkersFlag,
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "callexec"
	app.Usage = "Resumable call/create execution engine"
	app.UsageText = app.Name + ` [command] [flags]`
	app.Commands = []*cli.Command{
		&runCommand,
		&batchCommand,
	}
	app.Flags = []cli.Flag{
		&VerbosityFlag,
		&MetricsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogger(ctx)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(ctx *cli.Context) {
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	glogger := log.NewGlogHandler(log.NewTerminalHandler(output, usecolor))
	glogger.Verbosity(log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)))
	log.SetDefault(log.NewLogger(glogger))
}
