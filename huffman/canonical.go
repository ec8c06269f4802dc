// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"sort"
)

// CanonicalCodes assigns canonical codewords given a code length for each symbol, where a zero length means
// the symbol has no code.  Shorter codes sort first; among codes of one length, lower symbols sort first.
func CanonicalCodes(lengths []uint8) ([]Code, error) {
	var blCount [MaxPatternBits + 1]uint64
	var kraft uint64
	maxBits := uint8(0)
	for _, l := range lengths {
		if l > MaxPatternBits {
			return nil, ErrCodeTooLong
		}
		if l == 0 {
			continue
		}
		blCount[l]++
		kraft += uint64(1) << (MaxPatternBits - l)
		if l > maxBits {
			maxBits = l
		}
	}

	// Over-subscribed lengths cannot be prefix-free.
	if kraft > uint64(1)<<MaxPatternBits {
		return nil, ErrCodeTableInconsistent
	}

	var nextCodes [MaxPatternBits + 1]uint64
	code := uint64(0)
	for bits := uint8(1); bits <= maxBits; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCodes[bits] = code
	}

	codes := make([]Code, len(lengths))
	for i, l := range lengths {
		if l != 0 {
			codes[i] = Code{Pattern: uint32(nextCodes[l]), NumBits: l}
			nextCodes[l]++
		}
	}
	return codes, nil
}

type symCount struct {
	sym   int
	count uint64
}

// CodeLengths computes Huffman code lengths for a symbol histogram, limited to maxBits (clamped to
// 1..MaxPatternBits).  Symbols with zero frequency get length zero; a lone used symbol gets length one.
func CodeLengths(freqs []uint64, maxBits int) ([]uint8, error) {
	switch {
	case maxBits < 1:
		maxBits = 1
	case maxBits > MaxPatternBits:
		maxBits = MaxPatternBits
	}

	lengths := make([]uint8, len(freqs))
	var counts []symCount
	for sym, f := range freqs {
		if f != 0 {
			counts = append(counts, symCount{sym, f})
		}
	}

	switch len(counts) {
	case 0:
		return lengths, nil
	case 1:
		lengths[counts[0].sym] = 1
		return lengths, nil
	}
	if uint64(len(counts)) > uint64(1)<<uint(maxBits) {
		return nil, ErrLengthLimit
	}

	// Most frequent first, so the shortest lengths go to the front.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	depths := huffmanDepths(counts)
	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}

	if maxDepth <= maxBits {
		for i, c := range counts {
			lengths[c.sym] = uint8(depths[i])
		}
		return lengths, nil
	}

	lenCounts := make([]uint64, maxDepth+1)
	for _, d := range depths {
		lenCounts[d]++
	}
	enforceMaxLen(lenCounts, maxBits)

	idx := 0
	for length := 1; length <= maxBits; length++ {
		for j := uint64(0); j < lenCounts[length]; j++ {
			lengths[counts[idx].sym] = uint8(length)
			idx++
		}
	}
	return lengths, nil
}

// huffmanDepths returns the leaf depths of a Huffman tree over counts, which must be sorted by descending
// count.  It merges with two queues: leaves from the back of counts and internal nodes in creation order.
func huffmanDepths(counts []symCount) []int {
	n := len(counts)
	weights := make([]uint64, 0, 2*n-1)
	parents := make([]int, 2*n-1)

	// Leaves are nodes 0..n-1 in ascending count order.
	for i := n - 1; i >= 0; i-- {
		weights = append(weights, counts[i].count)
	}

	leaf, internal := 0, n
	pick := func() int {
		if leaf < n && (internal >= len(weights) || weights[leaf] <= weights[internal]) {
			leaf++
			return leaf - 1
		}
		internal++
		return internal - 1
	}

	for len(weights) < 2*n-1 {
		a := pick()
		b := pick()
		parents[a] = len(weights)
		parents[b] = len(weights)
		weights = append(weights, weights[a]+weights[b])
	}

	root := len(weights) - 1
	nodeDepth := make([]int, len(weights))
	for node := root - 1; node >= 0; node-- {
		nodeDepth[node] = nodeDepth[parents[node]] + 1
	}

	depths := make([]int, n)
	for i := 0; i < n; i++ {
		depths[n-1-i] = nodeDepth[i]
	}
	return depths
}

// enforceMaxLen moves every over-long code to maxLen and then lengthens shorter codes until the Kraft sum
// is exactly one again.
func enforceMaxLen(lenCounts []uint64, maxLen int) {
	for i := maxLen + 1; i < len(lenCounts); i++ {
		lenCounts[maxLen] += lenCounts[i]
		lenCounts[i] = 0
	}

	total := uint64(0)
	for i := 1; i <= maxLen; i++ {
		total += lenCounts[i] << uint(maxLen-i)
	}
	for total != uint64(1)<<uint(maxLen) {
		lenCounts[maxLen]--
		for i := maxLen - 1; i > 0; i-- {
			if lenCounts[i] != 0 {
				lenCounts[i]--
				lenCounts[i+1] += 2
				break
			}
		}
		total--
	}
}

// NewCodingFromFrequencies builds a canonical Huffman Coding for a 256-entry histogram.
func NewCodingFromFrequencies(freqs []uint64, maxBits int) (*Coding, error) {
	if len(freqs) != totalSymbols {
		return nil, ErrCodeTableWrongLength
	}

	lengths, err := CodeLengths(freqs, maxBits)
	if err != nil {
		return nil, err
	}

	codes, err := CanonicalCodes(lengths)
	if err != nil {
		return nil, err
	}

	return NewCoding(codes)
}
