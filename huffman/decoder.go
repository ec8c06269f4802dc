// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"math"

	"github.com/op/go-logging"

	"github.com/blanu/huffstream/buf"
)

const workingBitsSize = 64

// Decoder holds state for a single streaming Huffman decoding, converting one byte stream into another.
type Decoder struct {
	coder SymbolCoder

	// workingBits is left-justified: its most significant bits are the next bits to decode.  Bits below the
	// top numBits are always zero.
	workingBits uint64
	numBits     uint8

	// position counts the bits consumed by decoded symbols since the last reset.
	position uint64
}

// NewDecoder constructs a stateful decoder for the given coder.  The coder is shared, not owned.
func NewDecoder(coder SymbolCoder) *Decoder {
	return &Decoder{coder: coder}
}

// Reset discards all buffered input bits so that an unrelated stream can be decoded.
func (dec *Decoder) Reset() {
	dec.workingBits = 0
	dec.numBits = 0
	dec.position = 0
}

// Buffered returns the number of input bits read from earlier cursors but not yet decoded.
func (dec *Decoder) Buffered() int {
	return int(dec.numBits)
}

// Position returns the number of input bits consumed by decoded symbols since the last reset.
func (dec *Decoder) Position() uint64 {
	return dec.position
}

// fill tops up the working bits from src, one octet at a time, until a whole window is available or src
// runs dry.
func (dec *Decoder) fill(src *buf.Cursor) {
	for dec.numBits < MaxPatternBits {
		octet, ok := src.Next()
		if !ok {
			return
		}

		dec.workingBits |= uint64(octet) << (workingBitsSize - 8 - dec.numBits)
		dec.numBits += 8
	}
}

// Decode continues decoding bits from src into dst.  It returns nil when every available bit has been
// decoded, or when the bits left over are too few to tell a short code followed by padding from the prefix
// of a longer code; those bits stay buffered for the next call.  On ErrShortBuffer, call again with more
// space in dst.
//
// Decode never treats trailing bits as padding by itself.  If the exact length of the meaningful content is
// known, use DecodeBits so that padding is never emitted as symbols.
func (dec *Decoder) Decode(src *buf.Cursor, dst *buf.Buffer) error {
	return dec.DecodeBits(src, dst, math.MaxUint64)
}

// DecodeBits is like Decode, but stops once the decoder's position reaches budget bits since the last
// reset.  Bits past the budget are read into the window but never decoded.
func (dec *Decoder) DecodeBits(src *buf.Cursor, dst *buf.Buffer, budget uint64) error {
	if dst.Full() {
		return ErrShortBuffer
	}

	bitsLeft := uint64(dec.numBits) + 8*uint64(src.Len())
	if budget < dec.position {
		bitsLeft = 0
	} else if limit := budget - dec.position; limit < bitsLeft {
		bitsLeft = limit
	}

	for {
		dec.fill(src)

		window := uint32(dec.workingBits >> (workingBitsSize - MaxPatternBits))
		sym, bitsRead := dec.coder.DecodeSymbol(window)

		switch {
		case bitsRead == 0:
			if bitsLeft < MaxPatternBits {
				return nil
			}
			if log.IsEnabledFor(logging.DEBUG) {
				log.Debugf("no code matches window %032b at bit %d", window, dec.position)
			}
			return ErrUnknownSymbol
		case bitsRead > MaxPatternBits:
			panic("huffman: coder consumed more bits than the window holds")
		case uint64(bitsRead) > bitsLeft:
			// Matched only thanks to zero fill past the end of the real input.
			return nil
		}

		if !dst.AppendByte(sym) {
			return ErrShortBuffer
		}

		bitsLeft -= uint64(bitsRead)
		dec.workingBits <<= bitsRead
		dec.numBits -= bitsRead
		dec.position += uint64(bitsRead)

		if bitsLeft == 0 {
			return nil
		}
	}
}
