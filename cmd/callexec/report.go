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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/erigontech/callexec/execution/state"
	"github.com/erigontech/callexec/execution/vm"
)

type requestResult struct {
	Type            string                               `json:"type"`
	Success         bool                                 `json:"success"`
	Reason          string                               `json:"reason"`
	GasUsed         uint64                               `json:"gasUsed"`
	GasLeft         uint64                               `json:"gasLeft"`
	ReturnData      hexutil.Bytes                        `json:"returnData,omitempty"`
	ContractAddress *common.Address                      `json:"contractAddress,omitempty"`
	Stats           vm.Stats                             `json:"stats"`
	Error           string                               `json:"error,omitempty"`
	State           map[common.Address]state.DumpAccount `json:"state,omitempty"`
}

type report struct {
	Results []requestResult                      `json:"results"`
	State   map[common.Address]state.DumpAccount `json:"state,omitempty"`
}

func newResult(p *vm.ActionParams, out *vm.Outcome, stats vm.Stats, err error) requestResult {
	res := requestResult{Type: p.Type.String(), Stats: stats}
	if err != nil {
		res.Reason = "aborted"
		if !errors.Is(err, vm.ErrAborted) {
			res.Reason = "fatal"
		}
		res.Error = err.Error()
		res.GasUsed = p.Gas
		var abortErr *vm.AbortError
		if errors.As(err, &abortErr) {
			res.GasUsed = abortErr.GasUsed
		}
		return res
	}
	res.Success = out.Err == nil
	res.Reason = vm.FailureReason(out.Err)
	res.GasLeft = out.GasLeft
	res.GasUsed = p.Gas - out.GasLeft
	res.ReturnData = out.ReturnData
	if out.ContractAddress != (common.Address{}) {
		addr := out.ContractAddress
		res.ContractAddress = &addr
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return res
}

func writeReport(w io.Writer, rep *report, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "table":
		writeTable(w, rep)
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// writeTable prints one row per request. Post state is not part of the table.
func writeTable(w io.Writer, rep *report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Type", "Result", "Gas used", "Gas left", "Frames", "Max depth", "Output"})
	for i, res := range rep.Results {
		output := res.ReturnData.String()
		if res.ContractAddress != nil {
			output = res.ContractAddress.Hex()
		}
		if res.Error != "" && !res.Success {
			output = res.Error
		}
		t.AppendRow(table.Row{i, res.Type, res.Reason, res.GasUsed, res.GasLeft, res.Stats.Pushes, res.Stats.MaxDepth, output})
	}
	t.Render()
}
