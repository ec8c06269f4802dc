// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package hufftest holds test helpers shared by the huffstream packages: seeded random code tables and drivers
that push data through Encoders and Decoders in randomly sized chunks.
*/
package hufftest

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/blanu/huffstream/buf"
	"github.com/blanu/huffstream/huffman"
)

type treeNode struct {
	symbol      int
	left, right *treeNode
}

func randomHuffmanTree(rng *rand.Rand, symbols []int) *treeNode {
	nodes := make([]*treeNode, len(symbols))
	for i, sym := range symbols {
		nodes[i] = &treeNode{sym, nil, nil}
	}

	var swap int
	for len(nodes) >= 2 {
		swap = rng.Intn(len(nodes))
		nodes[0], nodes[swap] = nodes[swap], nodes[0]
		swap = 1 + rng.Intn(len(nodes)-1)
		nodes[1], nodes[swap] = nodes[swap], nodes[1]
		nodes[1] = &treeNode{-1, nodes[0], nodes[1]}
		nodes = nodes[1:]
	}

	return nodes[0]
}

// writeToCodeTable fills table from the subtree and reports whether every code fit in maxBits.
func (node *treeNode) writeToCodeTable(table []huffman.Code, prefix huffman.Code, maxBits int) bool {
	if node.symbol >= 0 {
		if prefix.NumBits == 0 {
			// A lone symbol still needs one bit.
			prefix.NumBits = 1
		}
		table[node.symbol] = prefix
		return true
	}

	if int(prefix.NumBits) >= maxBits {
		return false
	}

	left := huffman.Code{Pattern: prefix.Pattern << 1, NumBits: prefix.NumBits + 1}
	right := huffman.Code{Pattern: prefix.Pattern<<1 | 1, NumBits: prefix.NumBits + 1}
	return node.left.writeToCodeTable(table, left, maxBits) && node.right.writeToCodeTable(table, right, maxBits)
}

// RandomCodeTable returns a random complete prefix code over all 256 symbols with no code longer than
// maxBits.
func RandomCodeTable(rng *rand.Rand, maxBits int) []huffman.Code {
	symbols := make([]int, 256)
	for i := range symbols {
		symbols[i] = i
	}
	return randomTableOver(rng, symbols, maxBits)
}

// RandomPartialCodeTable returns a random prefix code over a random subset of n symbols; the other symbols
// have no code.  It also returns the encodable symbols.
func RandomPartialCodeTable(rng *rand.Rand, n, maxBits int) ([]huffman.Code, []byte) {
	perm := rng.Perm(256)[:n]
	alphabet := make([]byte, n)
	for i, sym := range perm {
		alphabet[i] = byte(sym)
	}
	return randomTableOver(rng, perm, maxBits), alphabet
}

func randomTableOver(rng *rand.Rand, symbols []int, maxBits int) []huffman.Code {
	for {
		table := make([]huffman.Code, 256)
		tree := randomHuffmanTree(rng, symbols)
		if tree.writeToCodeTable(table, huffman.Code{}, maxBits) {
			return table
		}
	}
}

// RandomCoding is RandomCodeTable compiled into a Coding.
func RandomCoding(t testing.TB, rng *rand.Rand, maxBits int) *huffman.Coding {
	coding, err := huffman.NewCoding(RandomCodeTable(rng, maxBits))
	if err != nil {
		t.Fatalf("random code table rejected: %v", err)
	}
	return coding
}

// RandomData returns n random symbols drawn from alphabet, or from all bytes if alphabet is empty.
func RandomData(rng *rand.Rand, n int, alphabet []byte) []byte {
	data := make([]byte, n)
	for i := range data {
		if len(alphabet) == 0 {
			data[i] = byte(rng.Intn(256))
		} else {
			data[i] = alphabet[rng.Intn(len(alphabet))]
		}
	}
	return data
}

// Sizes yields successive chunk sizes.
type Sizes func() int

// Fixed always yields n.
func Fixed(n int) Sizes {
	return func() int { return n }
}

// Random yields sizes uniformly in [lo, hi].
func Random(rng *rand.Rand, lo, hi int) Sizes {
	return func() int { return lo + rng.Intn(hi-lo+1) }
}

const maxStalls = 1000

// EncodeChunked encodes all of src, handing the encoder a fresh output buffer of the next size whenever it
// reports ErrShortBuffer, and returns the concatenated output.
func EncodeChunked(t testing.TB, enc *huffman.Encoder, src []byte, sizes Sizes) []byte {
	var out []byte
	cursor := buf.NewCursor(src)
	stalls := 0

	for {
		dst := buf.NewBuffer(sizes())
		err := enc.Encode(&cursor, &dst)
		out = append(out, dst.Data()...)

		switch {
		case err == nil:
			return out
		case !errors.Is(err, huffman.ErrShortBuffer):
			t.Fatalf("encode after %d output bytes: %v", len(out), err)
		case dst.Len() == 0:
			stalls++
			if stalls > maxStalls {
				t.Fatalf("no progress in encode loop")
			}
		}
	}
}

// DecodeChunked feeds src to the decoder in input chunks of inSizes, collecting output through buffers of
// outSizes, and stops decoding at budget bits.
func DecodeChunked(t testing.TB, dec *huffman.Decoder, src []byte, budget uint64, inSizes, outSizes Sizes) []byte {
	var out []byte
	stalls := 0

	for first := true; first || len(src) > 0; first = false {
		n := inSizes()
		if n > len(src) {
			n = len(src)
		}
		cursor := buf.NewCursor(src[:n])
		src = src[n:]

		for {
			dst := buf.NewBuffer(outSizes())
			err := dec.DecodeBits(&cursor, &dst, budget)
			out = append(out, dst.Data()...)

			if err == nil {
				break
			}
			if !errors.Is(err, huffman.ErrShortBuffer) {
				t.Fatalf("decode after %d output bytes: %v", len(out), err)
			}
			if dst.Len() == 0 {
				stalls++
				if stalls > maxStalls {
					t.Fatalf("no progress in decode loop")
				}
			}
		}
	}

	return out
}

// ShowBinaryOctets renders octets as space-separated binary, for test logs.
func ShowBinaryOctets(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%08b", x)
	}
	return strings.Join(parts, " ")
}
