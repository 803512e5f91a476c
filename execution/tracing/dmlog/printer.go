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

// Package dmlog prints the execution of a request as DMLOG lines, one line
// per event, for consumption by an external indexer.
package dmlog

import (
	"bufio"
	"io"
	"sync"
)

type Printer interface {
	Print(line string)
}

// DiscardPrinter drops every line.
type DiscardPrinter struct{}

func (DiscardPrinter) Print(string) {}

// WriterPrinter writes "DMLOG <line>\n" to an io.Writer. It is safe for
// concurrent use; lines are never interleaved.
type WriterPrinter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	err error
}

func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: bufio.NewWriter(w)}
}

func (p *WriterPrinter) Print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	p.w.WriteString("DMLOG ")
	p.w.WriteString(line)
	p.w.WriteByte('\n')
	p.err = p.w.Flush()
}

// Err returns the first write error; later lines are dropped after it.
func (p *WriterPrinter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
