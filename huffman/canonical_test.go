// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/blanu/huffstream/huffman"
	"github.com/blanu/huffstream/hufftest"
)

func TestCanonicalCodes(t *testing.T) {
	codes, err := huffman.CanonicalCodes([]uint8{2, 1, 3, 3, 0})
	if err != nil {
		t.Fatal(err)
	}

	want := []huffman.Code{codeOf("10"), codeOf("0"), codeOf("110"), codeOf("111"), {}}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("symbol %d: got %v, want %v", i, codes[i], want[i])
		}
	}
}

func TestCanonicalCodesRejects(t *testing.T) {
	if _, err := huffman.CanonicalCodes([]uint8{1, 1, 1}); !errors.Is(err, huffman.ErrCodeTableInconsistent) {
		t.Errorf("over-subscribed lengths got %v", err)
	}
	if _, err := huffman.CanonicalCodes([]uint8{1, 33}); !errors.Is(err, huffman.ErrCodeTooLong) {
		t.Errorf("33-bit length got %v", err)
	}
}

func TestCodeLengths(t *testing.T) {
	cases := []struct {
		freqs []uint64
		want  []uint8
	}{
		{[]uint64{0, 0, 0}, []uint8{0, 0, 0}},
		{[]uint64{0, 7, 0}, []uint8{0, 1, 0}},
		{[]uint64{1, 1, 2, 4}, []uint8{3, 3, 2, 1}},
		{[]uint64{5, 0, 5}, []uint8{1, 0, 1}},
	}

	for _, c := range cases {
		got, err := huffman.CodeLengths(c.freqs, huffman.MaxPatternBits)
		if err != nil {
			t.Errorf("%v: %v", c.freqs, err)
			continue
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("%v: got %v, want %v", c.freqs, got, c.want)
		}
	}
}

func kraftComplete(lengths []uint8) bool {
	var sum uint64
	for _, l := range lengths {
		if l != 0 {
			sum += uint64(1) << (huffman.MaxPatternBits - l)
		}
	}
	return sum == uint64(1)<<huffman.MaxPatternBits
}

func TestCodeLengthsLimited(t *testing.T) {
	// Fibonacci weights make the deepest possible tree.
	freqs := []uint64{1, 1}
	for len(freqs) < 20 {
		freqs = append(freqs, freqs[len(freqs)-1]+freqs[len(freqs)-2])
	}

	unlimited, err := huffman.CodeLengths(freqs, huffman.MaxPatternBits)
	if err != nil {
		t.Fatal(err)
	}
	if unlimited[0] != 19 {
		t.Errorf("unlimited deepest length %d", unlimited[0])
	}

	for _, maxBits := range []int{5, 8, 12} {
		lengths, err := huffman.CodeLengths(freqs, maxBits)
		if err != nil {
			t.Errorf("limit %d: %v", maxBits, err)
			continue
		}
		for sym, l := range lengths {
			if l == 0 || int(l) > maxBits {
				t.Errorf("limit %d: symbol %d got length %d", maxBits, sym, l)
			}
		}
		if !kraftComplete(lengths) {
			t.Errorf("limit %d: lengths %v are not a complete code", maxBits, lengths)
		}
		if _, err := huffman.CanonicalCodes(lengths); err != nil {
			t.Errorf("limit %d: %v", maxBits, err)
		}
	}
}

func TestCodeLengthsTooManySymbols(t *testing.T) {
	if _, err := huffman.CodeLengths([]uint64{1, 1, 1}, 1); !errors.Is(err, huffman.ErrLengthLimit) {
		t.Errorf("got %v", err)
	}
}

func TestCodingFromFrequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))

	for iteration := 0; iteration < iterations; iteration++ {
		freqs := make([]uint64, 256)
		for i := range freqs {
			if rng.Intn(4) != 0 {
				freqs[i] = uint64(rng.Intn(1 << uint(rng.Intn(20))))
			}
		}
		freqs['A'] = 1

		coding, err := huffman.NewCodingFromFrequencies(freqs, 16)
		if err != nil {
			t.Fatalf("#%d: %v", iteration, err)
		}

		var alphabet []byte
		for sym, f := range freqs {
			code := coding.EncodeSymbol(byte(sym))
			if (f != 0) != code.Valid() || code.NumBits > 16 {
				t.Errorf("#%d: frequency %d for %#02x got code %v", iteration, f, sym, code)
			}
			if f != 0 {
				alphabet = append(alphabet, byte(sym))
			}
		}

		enc := huffman.NewEncoder(coding)
		dec := huffman.NewDecoder(coding)
		dataIn := hufftest.RandomData(rng, 200, alphabet)
		encoded := hufftest.EncodeChunked(t, enc, dataIn, hufftest.Fixed(3))
		dataOut := hufftest.DecodeChunked(t, dec, encoded, enc.EncodedBits(dataIn), hufftest.Fixed(2), hufftest.Fixed(64))
		if !bytes.Equal(dataIn, dataOut) {
			t.Errorf("#%d: loopback mismatch", iteration)
		}
	}
}

func TestCodingFromFrequenciesSingleSymbol(t *testing.T) {
	freqs := make([]uint64, 256)
	freqs['Z'] = 100

	coding, err := huffman.NewCodingFromFrequencies(freqs, huffman.MaxPatternBits)
	if err != nil {
		t.Fatal(err)
	}
	if code := coding.EncodeSymbol('Z'); code != codeOf("0") {
		t.Errorf("got %v", code)
	}
}
