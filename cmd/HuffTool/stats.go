package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/huff0"

	"github.com/blanu/huffstream/huffman"
)

type statsReport struct {
	symbols     int
	unencodable int
	codeBits    uint64

	// Baseline: huff0 blocks, each with its own table.
	baselineBytes int
	blocks        int
	rawBlocks     int
	rleBlocks     int
}

func measure(coder huffman.SymbolCoder, data []byte) (*statsReport, error) {
	report := &statsReport{symbols: len(data)}

	for _, sym := range data {
		code := coder.EncodeSymbol(sym)
		if !code.Valid() {
			report.unencodable++
			continue
		}
		report.codeBits += uint64(code.NumBits)
	}

	var scratch huff0.Scratch
	for rest := data; len(rest) > 0; {
		n := len(rest)
		if n > huff0.BlockSizeMax {
			n = huff0.BlockSizeMax
		}
		block := rest[:n]
		rest = rest[n:]
		report.blocks++

		out, _, err := huff0.Compress1X(block, &scratch)
		switch {
		case err == nil:
			report.baselineBytes += len(out)
		case errors.Is(err, huff0.ErrIncompressible):
			report.rawBlocks++
			report.baselineBytes += len(block)
		case errors.Is(err, huff0.ErrUseRLE):
			report.rleBlocks++
			report.baselineBytes++
		default:
			return nil, fmt.Errorf("baseline block %d: %w", report.blocks, err)
		}
	}

	log.Debugf("measured %d symbols in %d baseline blocks", report.symbols, report.blocks)
	return report, nil
}

func bitsPerSymbol(bits uint64, symbols int) float64 {
	if symbols == 0 {
		return 0
	}
	return float64(bits) / float64(symbols)
}

func (report *statsReport) write(w io.Writer, coderName string) {
	encoded := report.symbols - report.unencodable
	fmt.Fprintf(w, "Symbols:       %d\n", report.symbols)
	if report.unencodable > 0 {
		fmt.Fprintf(w, "Unencodable:   %d\n", report.unencodable)
	}
	fmt.Fprintf(w, "Coder:         %s\n", coderName)
	fmt.Fprintf(w, "  bits:        %d (%d octets)\n", report.codeBits, (report.codeBits+7)/8)
	fmt.Fprintf(w, "  bits/symbol: %.3f\n", bitsPerSymbol(report.codeBits, encoded))
	fmt.Fprintf(w, "Baseline:      huff0, %d blocks (%d raw, %d RLE)\n",
		report.blocks, report.rawBlocks, report.rleBlocks)
	fmt.Fprintf(w, "  octets:      %d\n", report.baselineBytes)
	fmt.Fprintf(w, "  bits/symbol: %.3f\n", bitsPerSymbol(8*uint64(report.baselineBytes), report.symbols))
}
