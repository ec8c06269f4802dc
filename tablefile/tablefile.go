// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package tablefile reads and writes Huffman code tables as YAML documents, and builds tables from sample data.
Importing this package registers the "table" and "sample" coders.

A table document looks like:

	name: example
	eos_padding: 0xff
	codes:
	  - symbol: 0x41
	    bits: "0"
	  - symbol: 0x42
	    bits: "10"
*/
package tablefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/yaml.v3"

	"github.com/blanu/huffstream/huffman"
)

var log = logging.MustGetLogger("huffstream/tablefile")

var (
	ErrBadBits         = errors.New("huffstream/tablefile: code bits must be 1 to 32 of '0' or '1'")
	ErrBadSymbol       = errors.New("huffstream/tablefile: symbol out of range")
	ErrDuplicateSymbol = errors.New("huffstream/tablefile: symbol listed twice")
	ErrBadPadding      = errors.New("huffstream/tablefile: EOS padding out of range")
)

// Entry assigns one symbol its code, written as a string of binary digits, most significant first.
type Entry struct {
	Symbol int    `yaml:"symbol"`
	Bits   string `yaml:"bits"`
}

// Table is the document form of a code table.
type Table struct {
	Name       string  `yaml:"name,omitempty"`
	EOSPadding *int    `yaml:"eos_padding,omitempty"`
	Codes      []Entry `yaml:"codes"`
}

// Parse decodes a table document.  Unknown keys are rejected.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	table := &Table{}
	if err := dec.Decode(table); err != nil {
		return nil, fmt.Errorf("huffstream/tablefile: %w", err)
	}
	if err := table.check(); err != nil {
		return nil, err
	}
	return table, nil
}

// Load reads and parses a table document from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debugf("loaded table %q with %d codes from %s", table.Name, len(table.Codes), path)
	return table, nil
}

func parseBits(bits string) (code huffman.Code, err error) {
	if len(bits) == 0 || len(bits) > huffman.MaxPatternBits {
		return code, ErrBadBits
	}

	for _, r := range bits {
		code.Pattern <<= 1
		switch r {
		case '0':
		case '1':
			code.Pattern |= 1
		default:
			return huffman.Code{}, ErrBadBits
		}
	}
	code.NumBits = uint8(len(bits))
	return
}

func (table *Table) check() error {
	if table.EOSPadding != nil && (*table.EOSPadding < 0 || *table.EOSPadding > 0xff) {
		return ErrBadPadding
	}

	seen := make(map[int]bool)
	for _, entry := range table.Codes {
		if entry.Symbol < 0 || entry.Symbol > 0xff {
			return fmt.Errorf("%w: %d", ErrBadSymbol, entry.Symbol)
		}
		if seen[entry.Symbol] {
			return fmt.Errorf("%w: 0x%02x", ErrDuplicateSymbol, entry.Symbol)
		}
		seen[entry.Symbol] = true

		if _, err := parseBits(entry.Bits); err != nil {
			return fmt.Errorf("%w: symbol 0x%02x has %q", err, entry.Symbol, entry.Bits)
		}
	}
	return nil
}

// CodeTable returns the 256-entry code table described by the document.
func (table *Table) CodeTable() ([]huffman.Code, error) {
	if err := table.check(); err != nil {
		return nil, err
	}

	codes := make([]huffman.Code, 256)
	for _, entry := range table.Codes {
		codes[entry.Symbol], _ = parseBits(entry.Bits)
	}
	return codes, nil
}

// Coding compiles the document into a Coding.
func (table *Table) Coding() (*huffman.Coding, error) {
	codes, err := table.CodeTable()
	if err != nil {
		return nil, err
	}

	coding, err := huffman.NewCoding(codes)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table.Name, err)
	}
	return coding, nil
}

// Padding returns the EOS padding octet, defaulting to huffman.DefaultEOSPadding.
func (table *Table) Padding() uint8 {
	if table.EOSPadding == nil {
		return huffman.DefaultEOSPadding
	}
	return uint8(*table.EOSPadding)
}

func formatBits(code huffman.Code) string {
	var sb strings.Builder
	for i := int(code.NumBits) - 1; i >= 0; i-- {
		if code.Pattern>>uint(i)&1 == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// FromCoding builds a document from a Coding, listing codes shortest first.
func FromCoding(name string, coding *huffman.Coding, padding uint8) *Table {
	codes := coding.Table()
	pad := int(padding)
	table := &Table{
		Name:       name,
		EOSPadding: &pad,
	}

	for sym, code := range codes {
		if code.Valid() {
			table.Codes = append(table.Codes, Entry{Symbol: sym, Bits: formatBits(code)})
		}
	}
	sort.SliceStable(table.Codes, func(i, j int) bool {
		return len(table.Codes[i].Bits) < len(table.Codes[j].Bits)
	})
	return table
}

// Marshal encodes the document as YAML.
func (table *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(table)
}

// Save writes the document to path.
func (table *Table) Save(path string) error {
	data, err := table.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
