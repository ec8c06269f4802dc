// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package huffman implements streaming, byte-chunked Huffman bit codecs for 256-symbol alphabets, with up to
32-bit codeword length.

The mapping between symbols and codewords is supplied by a SymbolCoder.  An Encoder packs the codes for a
run of symbols into a caller-owned fixed-capacity buffer, carrying the unwritten tail of a code across calls
when the buffer fills up.  A Decoder keeps a rolling window of pending input bits so that encoded data may be
delivered in chunks of any size.  Neither side decides where a logical message ends; callers that need exact
stream boundaries track the meaningful bit length out of band and use Decoder.DecodeBits.
*/
package huffman

import (
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("huffstream/huffman")

// LogModules lists the logging modules used by the huffstream packages.
var LogModules = []string{
	"huffstream/huffman",
	"huffstream/tablefile",
	"huffstream/frame",
}

// MaxPatternBits is the width of a Code pattern, and thus the longest codeword and the width of the decode
// window.
const MaxPatternBits = 32

// Code is a single codeword.  Pattern holds the code right-justified in its low NumBits bits, most
// significant bit first on the wire.  A zero NumBits means "no code".
type Code struct {
	Pattern uint32
	NumBits uint8
}

// Valid returns true iff code is not the "no code" sentinel.
func (code Code) Valid() bool {
	return code.NumBits != 0
}

// lowMask returns a mask of the low n bits, for 0 <= n <= 32.
func lowMask(n uint8) uint32 {
	return uint32(uint64(1)<<n - 1)
}

func (code Code) String() string {
	prefix := []rune{'#', '*'}
	allRunes := make([]rune, len(prefix)+int(code.NumBits))
	copy(allRunes, prefix)

	bitRunes := allRunes[len(prefix):]
	for i := range bitRunes {
		bit := (code.Pattern >> (uint(code.NumBits) - 1 - uint(i))) & 1
		if bit == 0 {
			bitRunes[i] = '0'
		} else {
			bitRunes[i] = '1'
		}
	}

	return string(allRunes)
}

// SymbolCoder maps between byte symbols and codewords in both directions.  Implementations must be
// deterministic: the same symbol or window must always give the same answer, or resumed calls on an Encoder
// or Decoder will produce inconsistent streams.  A single SymbolCoder may be shared by any number of Encoders
// and Decoders as long as its methods are safe for concurrent use.
type SymbolCoder interface {
	// EncodeSymbol returns the codeword for sym, or the zero Code if sym cannot be encoded.
	EncodeSymbol(sym byte) Code

	// DecodeSymbol matches the leading bits of window, most significant first, against the codewords.  It
	// returns the matched symbol and the length of its codeword, or a zero bitsRead if nothing matches.
	DecodeSymbol(window uint32) (sym byte, bitsRead uint8)
}
