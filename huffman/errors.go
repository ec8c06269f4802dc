// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"errors"
)

var (
	// ErrUnknownSymbol means a symbol has no codeword (encoding) or a full window of real input bits matches
	// no codeword (decoding).  Retrying the same call will fail the same way.
	ErrUnknownSymbol = errors.New("huffstream/huffman: unknown symbol")

	// ErrShortBuffer means the destination buffer filled up.  The call may be resumed with more space.
	ErrShortBuffer = errors.New("huffstream/huffman: short buffer")
)

var (
	ErrCodeTableInconsistent = errors.New("huffstream/huffman: inconsistent code table")
	ErrCodeTableWrongLength  = errors.New("huffstream/huffman: code table not of expected length")
	ErrCodeEmpty             = errors.New("huffstream/huffman: code table has no codes")
	ErrCodeTooLong           = errors.New("huffstream/huffman: code longer than 32 bits")
	ErrCodeExtraneousBits    = errors.New("huffstream/huffman: code with extraneous bits above its length")
	ErrLengthLimit           = errors.New("huffstream/huffman: too many symbols for code length limit")
	ErrInvalidCoderName      = errors.New("huffstream/huffman: no coder registered under that name")
)

// ParameterErrorHow describes whether the data element referenced in a ParameterError is missing, unexpected
// (present but without a known interpretation), or invalid (present when expected but with an uninterpretable
// value).
type ParameterErrorHow int

const (
	ParameterErrorUnknown ParameterErrorHow = iota
	ParameterMissing
	ParameterUnexpected
	ParameterInvalid
)

// ParameterError describes a problem relating to a specific coder parameter.  Specific may be the empty
// string to refer to the single element of a kind.
type ParameterError struct {
	How      ParameterErrorHow
	Kind     string
	Specific string
}

func (pe *ParameterError) Error() string {
	var str string
	switch pe.How {
	case ParameterErrorUnknown:
		str = "??? "
	case ParameterMissing:
		str = "missing "
	case ParameterUnexpected:
		str = "unexpected "
	case ParameterInvalid:
		str = "invalid "
	}

	str += pe.Kind
	if pe.Specific != "" {
		str += " '" + pe.Specific + "'"
	}
	return str
}
