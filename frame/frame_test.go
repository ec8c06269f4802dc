// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package frame_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/blanu/huffstream/frame"
	"github.com/blanu/huffstream/huffman"
	"github.com/blanu/huffstream/hufftest"
)

const (
	randSeed   = 0x5a025ca11825a5e7
	iterations = 10
)

func writeFrame(t *testing.T, coder huffman.SymbolCoder, data []byte, opts frame.Options) []byte {
	var out bytes.Buffer
	if err := frame.Write(&out, coder, data, opts); err != nil {
		t.Fatalf("write: %v", err)
	}
	return out.Bytes()
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))

	for iteration := 0; iteration < iterations; iteration++ {
		coding := hufftest.RandomCoding(t, rng, huffman.MaxPatternBits)
		data := hufftest.RandomData(rng, rng.Intn(3000), nil)

		var reference []byte
		for _, chunk := range []int{1, 3, 64, 0} {
			opts := frame.Options{ChunkSize: chunk}
			framed := writeFrame(t, coding, data, opts)
			if reference == nil {
				reference = framed
			} else if !bytes.Equal(reference, framed) {
				t.Errorf("#%d: chunk size %d changed the frame", iteration, chunk)
			}

			got, err := frame.Read(bytes.NewReader(framed), coding, opts)
			if err != nil {
				t.Errorf("#%d chunk %d: read: %v", iteration, chunk, err)
				continue
			}
			if !bytes.Equal(got, data) {
				t.Errorf("#%d chunk %d: got %d symbols back from %d", iteration, chunk, len(got), len(data))
			}
		}
	}
}

func TestHeader(t *testing.T) {
	coding, err := huffman.NewCoding(func() []huffman.Code {
		table := make([]huffman.Code, 256)
		table['A'] = huffman.Code{Pattern: 0x0, NumBits: 1}
		table['B'] = huffman.Code{Pattern: 0x2, NumBits: 2}
		table['C'] = huffman.Code{Pattern: 0x3, NumBits: 2}
		return table
	}())
	if err != nil {
		t.Fatal(err)
	}

	framed := writeFrame(t, coding, []byte("AAB"), frame.Options{})
	if len(framed) != frame.HeaderSize+1 || framed[len(framed)-1] != 0x2f {
		t.Fatalf("frame %x", framed)
	}

	hdr, err := frame.ReadHeader(bytes.NewReader(framed))
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Padding != 0xff || hdr.BitLength != 4 || hdr.Symbols != 3 || hdr.PayloadLength() != 1 {
		t.Errorf("got %+v", hdr)
	}

	// The padding bits would decode as CC without the bit length.
	got, err := frame.Read(bytes.NewReader(framed), coding, frame.Options{})
	if err != nil || string(got) != "AAB" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestEmpty(t *testing.T) {
	framed := writeFrame(t, huffman.Flat, nil, frame.Options{})
	if len(framed) != frame.HeaderSize {
		t.Errorf("empty frame is %d octets", len(framed))
	}

	got, err := frame.Read(bytes.NewReader(framed), huffman.Flat, frame.Options{})
	if err != nil || len(got) != 0 {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestWriteUnknownSymbol(t *testing.T) {
	table := make([]huffman.Code, 256)
	table['A'] = huffman.Code{Pattern: 0, NumBits: 1}
	coding, err := huffman.NewCoding(table)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := frame.Write(&out, coding, []byte("AAZ"), frame.Options{}); !errors.Is(err, huffman.ErrUnknownSymbol) {
		t.Errorf("got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d octets", out.Len())
	}
}

func TestReadRejects(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))
	coding := hufftest.RandomCoding(t, rng, huffman.MaxPatternBits)
	data := hufftest.RandomData(rng, 500, nil)
	framed := writeFrame(t, coding, data, frame.Options{})

	corrupt := func(offset int, delta byte) []byte {
		out := append([]byte(nil), framed...)
		out[offset] += delta
		return out
	}

	const (
		symbolsEnd = 4 + 1 + 8 + 8
		digestAt   = symbolsEnd
	)

	cases := []struct {
		name  string
		input []byte
		want  error
	}{
		{"magic", corrupt(0, 1), frame.ErrBadMagic},
		{"short header", framed[:frame.HeaderSize-1], frame.ErrTruncated},
		{"nothing", nil, frame.ErrTruncated},
		{"short payload", framed[:len(framed)-1], frame.ErrTruncated},
		{"more symbols", corrupt(symbolsEnd-1, 1), frame.ErrLengthMismatch},
		{"fewer symbols", corrupt(symbolsEnd-1, 0xff), frame.ErrLengthMismatch},
		{"digest", corrupt(digestAt, 1), frame.ErrDigestMismatch},
	}

	for _, c := range cases {
		for _, chunk := range []int{1, 7, 0} {
			_, err := frame.Read(bytes.NewReader(c.input), coding, frame.Options{ChunkSize: chunk})
			if !errors.Is(err, c.want) {
				t.Errorf("%s, chunk %d: got %v, want %v", c.name, chunk, err, c.want)
			}
		}
	}
}
