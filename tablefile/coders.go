// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package tablefile

import (
	"os"

	"github.com/blanu/huffstream/huffman"
)

// DefaultMaxBits limits the code length of tables built from samples.
const DefaultMaxBits = 24

// Histogram counts the occurrences of each octet in data.
func Histogram(data []byte) []uint64 {
	freqs := make([]uint64, 256)
	for _, b := range data {
		freqs[b]++
	}
	return freqs
}

// FromSample builds a canonical Huffman Coding from the octet frequencies of data.  Every octet receives a
// code, including ones absent from data, so that any input stays encodable.
func FromSample(data []byte, maxBits int) (*huffman.Coding, error) {
	freqs := Histogram(data)
	for i := range freqs {
		// Scale so that absent symbols weigh less than any present one.
		freqs[i] = freqs[i]*256 + 1
	}

	return huffman.NewCodingFromFrequencies(freqs, maxBits)
}

// paddedCoding carries a table document's EOS padding along with its Coding.
type paddedCoding struct {
	*huffman.Coding
	padding uint8
}

func (pc paddedCoding) EOSPadding() uint8 {
	return pc.padding
}

func makeTableCoder(params map[string]string) (huffman.SymbolCoder, error) {
	acked := make(map[string]bool)
	path, ok := huffman.LookupParam(params, acked, "path")
	if !ok {
		return nil, &huffman.ParameterError{How: huffman.ParameterMissing, Kind: "parameter", Specific: "path"}
	}
	if err := huffman.CheckUnackedParams(params, acked); err != nil {
		return nil, err
	}

	table, err := Load(path)
	if err != nil {
		return nil, err
	}

	coding, err := table.Coding()
	if err != nil {
		return nil, err
	}
	return paddedCoding{coding, table.Padding()}, nil
}

func makeSampleCoder(params map[string]string) (huffman.SymbolCoder, error) {
	acked := make(map[string]bool)
	path, ok := huffman.LookupParam(params, acked, "path")
	if !ok {
		return nil, &huffman.ParameterError{How: huffman.ParameterMissing, Kind: "parameter", Specific: "path"}
	}
	maxBits, err := huffman.LookupIntParam(params, acked, "maxbits", DefaultMaxBits, 8, huffman.MaxPatternBits)
	if err != nil {
		return nil, err
	}
	if err := huffman.CheckUnackedParams(params, acked); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	log.Debugf("building %d-bit limited table from %d sample octets in %s", maxBits, len(data), path)
	coding, err := FromSample(data, maxBits)
	if err != nil {
		return nil, err
	}
	return coding, nil
}

func init() {
	huffman.RegisterCoder("table", makeTableCoder)
	huffman.RegisterCoder("sample", makeSampleCoder)
}
