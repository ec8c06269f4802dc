// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"github.com/op/go-logging"

	"github.com/blanu/huffstream/buf"
)

// DefaultEOSPadding fills the last partial octet of a completed encoding.
const DefaultEOSPadding = 0xff

// Encoder holds state for a single streaming Huffman encoding, converting one byte stream into another.
type Encoder struct {
	coder      SymbolCoder
	eosPadding uint8

	// overflow holds the unwritten tail of the code that was being packed when the output filled up.
	overflow Code
}

// PaddingHinter is implemented by coders that come with a preferred EOS padding.
type PaddingHinter interface {
	EOSPadding() uint8
}

// NewEncoder constructs a stateful encoder for the given coder.  The coder is shared, not owned.  The EOS
// padding starts out as the coder's preference if it has one, else DefaultEOSPadding.
func NewEncoder(coder SymbolCoder) *Encoder {
	enc := &Encoder{
		coder:      coder,
		eosPadding: DefaultEOSPadding,
	}
	if hinter, ok := coder.(PaddingHinter); ok {
		enc.eosPadding = hinter.EOSPadding()
	}
	return enc
}

// Reset discards any pending bits so that an unrelated stream can be encoded.  The coder and the EOS
// padding are kept.
func (enc *Encoder) Reset() {
	enc.overflow = Code{}
}

// EOSPadding returns the octet whose high bits fill out the final partial octet of each completed encoding.
func (enc *Encoder) EOSPadding() uint8 {
	return enc.eosPadding
}

// SetEOSPadding changes the EOS padding octet.
func (enc *Encoder) SetEOSPadding(padding uint8) {
	enc.eosPadding = padding
}

// Pending returns the number of bits computed by a previous call but not yet written.
func (enc *Encoder) Pending() int {
	return int(enc.overflow.NumBits)
}

// EncodedBits returns the exact number of code bits for src.  Symbols without a code contribute nothing.
func (enc *Encoder) EncodedBits(src []byte) (bits uint64) {
	for _, sym := range src {
		bits += uint64(enc.coder.EncodeSymbol(sym).NumBits)
	}
	return
}

// EncodedLength returns the number of octets a complete, uninterrupted Encode of src appends, including
// the padded final octet.
func (enc *Encoder) EncodedLength(src []byte) int {
	bits := enc.EncodedBits(src)
	length := bits / 8
	if bits%8 != 0 {
		length++
	}
	return int(length)
}

type encoderState struct {
	enc     *Encoder
	dst     *buf.Buffer
	working uint8
	bitPos  uint8
}

// writeCode packs code into the output most significant bit first.  When an octet completes and the output
// is then full, the unwritten tail of code becomes the encoder's overflow and ErrShortBuffer is returned.
func (state *encoderState) writeCode(code Code) error {
	bitsToWrite := code.NumBits
	for bitsToWrite > 0 {
		n := bitsToWrite
		if n > state.bitPos {
			n = state.bitPos
		}

		// Top n bits of what is left of the code, shifted into the free low positions of the octet.
		chunk := uint8((code.Pattern >> (bitsToWrite - n)) & lowMask(n))
		state.working |= chunk << (state.bitPos - n)

		bitsToWrite -= n
		state.bitPos -= n

		if state.bitPos == 0 {
			state.dst.AppendByte(state.working)
			state.working = 0
			state.bitPos = 8

			if state.dst.Full() {
				state.enc.overflow = Code{
					Pattern: code.Pattern & lowMask(bitsToWrite),
					NumBits: bitsToWrite,
				}
				return ErrShortBuffer
			}
		}
	}

	return nil
}

// padOut fills the free positions of a partial octet with the high bits of padding and flushes it.  A
// partial octet only exists while the output has room for it.
func (state *encoderState) padOut(padding uint8) {
	if state.bitPos == 8 {
		return
	}

	state.working |= padding >> (8 - state.bitPos)
	state.dst.AppendByte(state.working)
	state.working = 0
	state.bitPos = 8
}

// Encode continues encoding symbols from src into dst.  It returns nil once src is drained, after padding
// the output to an octet boundary with the EOS padding.  On ErrShortBuffer, call again with more space in
// dst; the symbols already taken from src are not read again.  On ErrUnknownSymbol, the offending symbol is
// left at the front of src and everything before it remains committed in dst, padded out to an octet.
func (enc *Encoder) Encode(src *buf.Cursor, dst *buf.Buffer) error {
	if dst.Full() {
		return ErrShortBuffer
	}

	state := encoderState{
		enc:    enc,
		dst:    dst,
		bitPos: 8,
	}

	if enc.overflow.NumBits > 0 {
		pending := enc.overflow
		enc.overflow = Code{}
		if err := state.writeCode(pending); err != nil {
			enc.logSuspend()
			return err
		}
	}

	for src.Len() > 0 {
		sym := src.Rest()[0]
		code := enc.coder.EncodeSymbol(sym)
		if !code.Valid() {
			if log.IsEnabledFor(logging.DEBUG) {
				log.Debugf("no code for symbol 0x%02x", sym)
			}
			state.padOut(enc.eosPadding)
			return ErrUnknownSymbol
		}

		src.Advance(1)
		if err := state.writeCode(code); err != nil {
			enc.logSuspend()
			return err
		}
	}

	state.padOut(enc.eosPadding)
	return nil
}

func (enc *Encoder) logSuspend() {
	if log.IsEnabledFor(logging.DEBUG) {
		log.Debugf("encoder suspended on full output with %d overflow bits", enc.overflow.NumBits)
	}
}
