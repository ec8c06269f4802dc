// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package frame wraps a Huffman-coded payload in a small header recording the exact number of meaningful bits,
the number of symbols, and a BLAKE2b-256 digest of the symbols, so that a reader knows exactly where the
content ends and can tell padding apart from data.

Frame layout, integers big-endian:

	"HUF1" | EOS padding (1) | bit length (8) | symbol count (8) | digest (32) | payload
*/
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/op/go-logging"
	"golang.org/x/crypto/blake2b"

	"github.com/blanu/huffstream/buf"
	"github.com/blanu/huffstream/huffman"
)

var log = logging.MustGetLogger("huffstream/frame")

var (
	ErrBadMagic       = errors.New("huffstream/frame: bad magic")
	ErrTruncated      = errors.New("huffstream/frame: truncated frame")
	ErrLengthMismatch = errors.New("huffstream/frame: decoded length does not match header")
	ErrDigestMismatch = errors.New("huffstream/frame: digest mismatch")
)

const (
	magic = "HUF1"

	HeaderSize = len(magic) + 1 + 8 + 8 + blake2b.Size256

	// DefaultChunkSize is the size of the intermediate buffers used when no chunk size is given.
	DefaultChunkSize = 4096

	// maxPrealloc bounds the output capacity reserved on the word of an unverified header.
	maxPrealloc = 1 << 20
)

// Options controls streaming.
type Options struct {
	// ChunkSize is the size of the fixed buffers the payload streams through.
	ChunkSize int
}

func (opts Options) chunkSize() int {
	if opts.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return opts.ChunkSize
}

// Header describes a frame's payload.
type Header struct {
	Padding   uint8
	BitLength uint64
	Symbols   uint64
	Digest    [blake2b.Size256]byte
}

// PayloadLength returns the number of payload octets following the header.
func (hdr *Header) PayloadLength() uint64 {
	return (hdr.BitLength + 7) / 8
}

func (hdr *Header) marshal() []byte {
	out := make([]byte, 0, HeaderSize)
	out = append(out, magic...)
	out = append(out, hdr.Padding)
	out = binary.BigEndian.AppendUint64(out, hdr.BitLength)
	out = binary.BigEndian.AppendUint64(out, hdr.Symbols)
	out = append(out, hdr.Digest[:]...)
	return out
}

// ReadHeader reads and checks a frame header.
func ReadHeader(r io.Reader) (*Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}

	if !bytes.Equal(raw[:len(magic)], []byte(magic)) {
		return nil, ErrBadMagic
	}

	rest := raw[len(magic):]
	hdr := &Header{
		Padding:   rest[0],
		BitLength: binary.BigEndian.Uint64(rest[1:9]),
		Symbols:   binary.BigEndian.Uint64(rest[9:17]),
	}
	copy(hdr.Digest[:], rest[17:])
	return hdr, nil
}

// Write encodes src with coder and writes it to w as one frame.  Every symbol must be encodable; this is
// checked before anything is written.
func Write(w io.Writer, coder huffman.SymbolCoder, src []byte, opts Options) error {
	enc := huffman.NewEncoder(coder)

	var bits uint64
	for i, sym := range src {
		code := coder.EncodeSymbol(sym)
		if !code.Valid() {
			return fmt.Errorf("symbol 0x%02x at offset %d: %w", sym, i, huffman.ErrUnknownSymbol)
		}
		bits += uint64(code.NumBits)
	}

	hdr := Header{
		Padding:   enc.EOSPadding(),
		BitLength: bits,
		Symbols:   uint64(len(src)),
		Digest:    blake2b.Sum256(src),
	}
	if _, err := w.Write(hdr.marshal()); err != nil {
		return err
	}

	cursor := buf.NewCursor(src)
	out := buf.NewBuffer(opts.chunkSize())
	chunks := 0
	for {
		err := enc.Encode(&cursor, &out)
		if _, werr := w.Write(out.Data()); werr != nil {
			return werr
		}
		out.Reset()
		chunks++

		if err == nil {
			break
		}
		if !errors.Is(err, huffman.ErrShortBuffer) {
			return err
		}
	}

	log.Debugf("wrote frame: %d symbols, %d bits, %d chunks", hdr.Symbols, hdr.BitLength, chunks)
	return nil
}

// Read reads one frame from r and decodes it with coder, verifying the symbol count and digest.
func Read(r io.Reader, coder huffman.SymbolCoder, opts Options) ([]byte, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	prealloc := hdr.Symbols
	if prealloc > maxPrealloc {
		prealloc = maxPrealloc
	}
	result := make([]byte, 0, prealloc)

	dec := huffman.NewDecoder(coder)
	chunk := make([]byte, opts.chunkSize())
	out := buf.NewBuffer(opts.chunkSize())

	for remaining := hdr.PayloadLength(); remaining > 0; {
		n := uint64(len(chunk))
		if n > remaining {
			n = remaining
		}
		if _, err := io.ReadFull(r, chunk[:n]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrTruncated
			}
			return nil, err
		}
		remaining -= n

		cursor := buf.NewCursor(chunk[:n])
		for {
			err := dec.DecodeBits(&cursor, &out, hdr.BitLength)
			result = append(result, out.Data()...)
			out.Reset()

			if err == nil {
				break
			}
			if !errors.Is(err, huffman.ErrShortBuffer) {
				return nil, fmt.Errorf("at bit %d: %w", dec.Position(), err)
			}
		}

		if uint64(len(result)) > hdr.Symbols {
			return nil, ErrLengthMismatch
		}
	}

	if dec.Position() != hdr.BitLength || uint64(len(result)) != hdr.Symbols {
		return nil, ErrLengthMismatch
	}

	if blake2b.Sum256(result) != hdr.Digest {
		return nil, ErrDigestMismatch
	}

	log.Debugf("read frame: %d symbols, %d bits", hdr.Symbols, hdr.BitLength)
	return result, nil
}
