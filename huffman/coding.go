// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"fmt"
	"strings"
)

const totalSymbols = 256

const (
	treeShift        = 3
	treeFanout       = 1 << treeShift
	treeSelectorMask = (1 << treeShift) - 1
	treeIndexStart   = 0

	treePointerTypeNone    = 0x00
	treePointerTypeDescend = 0x40
	treePointerTypeReturn  = 0x80
	treePointerTypeMask    = 0xc0
)

// treePointer is one child slot of a tree node.  The high bits of consume carry the pointer type and the low
// bits the number of window bits the step consumes.  Empty slots lead to no codeword.
type treePointer struct {
	target  uint16
	consume uint8
}

func treeBranch(target int) treePointer {
	if !(0 <= target && target < 1<<16) {
		panic("huffman: bad branch target")
	}

	return treePointer{uint16(target), treePointerTypeDescend | treeShift}
}

func treeLeaf(sym byte, consume uint8) treePointer {
	if !(0 < consume && consume <= treeShift) {
		panic("huffman: bad number of bits to consume")
	}

	return treePointer{uint16(sym), treePointerTypeReturn | consume}
}

type treeNode struct {
	children [treeFanout]treePointer
}

func (node treeNode) String() string {
	var parts []string

	for i := 0; i < treeFanout; i++ {
		pointer := node.children[i]

		var part string

		switch pointer.consume & treePointerTypeMask {
		default:
			part = "???"
		case treePointerTypeNone:
			part = "-"
		case treePointerTypeDescend:
			part = fmt.Sprintf(">%d", int(pointer.target))
		case treePointerTypeReturn:
			part = fmt.Sprintf("@%02x", uint8(pointer.target))
		}

		consume := pointer.consume &^ treePointerTypeMask
		if pointer.consume&treePointerTypeMask == treePointerTypeReturn && consume < treeShift {
			part = fmt.Sprintf("%d*%s", 1<<uint(treeShift-consume), part)
			i += 1<<uint(treeShift-consume) - 1
		}

		parts = append(parts, part)
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// Coding is a SymbolCoder backed by a static table mapping each eight-bit symbol to at most one codeword.  A
// Coding can only be constructed given a consistent code table, and is safe for concurrent use.
type Coding struct {
	codeTable []Code
	treeNodes []treeNode
}

type treeBuilder struct {
	nodes []treeNode
}

// insert adds the path for code, panicking with ErrCodeTableInconsistent if it collides with another code.
func (tb *treeBuilder) insert(sym byte, code Code) {
	index := treeIndexStart
	remaining := code.NumBits

	for remaining > treeShift {
		selector := (code.Pattern >> (remaining - treeShift)) & treeSelectorMask
		pointer := tb.nodes[index].children[selector]

		switch pointer.consume & treePointerTypeMask {
		case treePointerTypeNone:
			tb.nodes = append(tb.nodes, treeNode{})
			tb.nodes[index].children[selector] = treeBranch(len(tb.nodes) - 1)
			index = len(tb.nodes) - 1
		case treePointerTypeDescend:
			index = int(pointer.target)
		default:
			// A shorter code is a prefix of this one.
			panic(ErrCodeTableInconsistent)
		}

		remaining -= treeShift
	}

	bits := (code.Pattern & lowMask(remaining)) << (treeShift - remaining)
	leafFanout := uint32(1) << (treeShift - remaining)
	leaf := treeLeaf(sym, remaining)
	for leafTail := uint32(0); leafTail < leafFanout; leafTail++ {
		slot := &tb.nodes[index].children[bits+leafTail]
		if slot.consume&treePointerTypeMask != treePointerTypeNone {
			panic(ErrCodeTableInconsistent)
		}
		*slot = leaf
	}
}

func makeTree(codeTable []Code) (result []treeNode, err error) {
	defer func() {
		if panicked := recover(); panicked != nil {
			switch panicked {
			case ErrCodeTableInconsistent:
				result = nil
				err = panicked.(error)
				return
			default:
				panic(panicked)
			}
		}
	}()

	tb := treeBuilder{nodes: make([]treeNode, 1)}
	for sym, code := range codeTable {
		if code.Valid() {
			tb.insert(byte(sym), code)
		}
	}

	result = tb.nodes
	return
}

// NewCoding constructs a Coding from the given code table, or returns an error if the code table is
// inconsistent with Huffman modeling.  codeTable must have exactly 256 entries; codeTable[S] is the codeword
// for symbol S, or the zero Code if S is not encodable.  The set of codewords must be prefix-free and
// non-empty, and no codeword may exceed MaxPatternBits.  The table need not be complete: windows that lead
// to no codeword decode as unknown.
func NewCoding(codeTable []Code) (*Coding, error) {
	if len(codeTable) != totalSymbols {
		return nil, ErrCodeTableWrongLength
	}

	found := false
	for _, code := range codeTable {
		switch {
		case code.NumBits > MaxPatternBits:
			return nil, ErrCodeTooLong
		case code.Pattern&^lowMask(code.NumBits) != 0 && code.NumBits != 0:
			return nil, ErrCodeExtraneousBits
		case code.Valid():
			found = true
		}
	}
	if !found {
		return nil, ErrCodeEmpty
	}

	table := make([]Code, totalSymbols)
	copy(table, codeTable)

	treeNodes, err := makeTree(table)
	if err != nil {
		return nil, err
	}

	return &Coding{table, treeNodes}, nil
}

// EncodeSymbol implements SymbolCoder.
func (coding *Coding) EncodeSymbol(sym byte) Code {
	return coding.codeTable[sym]
}

// DecodeSymbol implements SymbolCoder by walking the tree treeShift bits at a time.
func (coding *Coding) DecodeSymbol(window uint32) (sym byte, bitsRead uint8) {
	treeNodes := coding.treeNodes
	held := uint64(window) << (64 - MaxPatternBits)
	index := treeIndexStart

	for {
		selector := held >> (64 - treeShift)
		pointer := treeNodes[index].children[selector]
		consume := pointer.consume &^ treePointerTypeMask

		switch pointer.consume & treePointerTypeMask {
		case treePointerTypeDescend:
			index = int(pointer.target)
			bitsRead += consume
			held <<= treeShift
		case treePointerTypeReturn:
			return byte(pointer.target), bitsRead + consume
		default:
			return 0, 0
		}
	}
}

// Table returns a copy of the code table.
func (coding *Coding) Table() []Code {
	table := make([]Code, totalSymbols)
	copy(table, coding.codeTable)
	return table
}

// TreeString renders the decoding tree, one node per line.
func (coding *Coding) TreeString() string {
	var parts []string

	for i, node := range coding.treeNodes {
		parts = append(parts, fmt.Sprintf("\t%d: %v\n", i, node))
	}

	return "TREE{\n" + strings.Join(parts, "") + "}"
}
