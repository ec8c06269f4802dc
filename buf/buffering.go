// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package buf contains the byte buffer and byte cursor primitives that the streaming codecs read from and write
into, plus a few imperative buffer-handling routines to avoid mistake-prone repetition when streaming chunks
of bytes.
*/
package buf

// CopyAdvance copies as many bytes as possible from *in to *out, and advances the start pointers of both *in
// and *out past the copied bytes.
func CopyAdvance(out *[]byte, in *[]byte) int {
	n := copy(*out, *in)
	*in = (*in)[n:]
	*out = (*out)[n:]
	return n
}

// A Buffer is a prefix of a dedicated array.  New bytes are appended between len() and cap(), advancing
// len(); the capacity never grows.
type Buffer []byte

// NewBuffer returns a fresh, empty buffer with the given capacity.
func NewBuffer(size int) Buffer {
	return make([]byte, 0, size)
}

// BufferOf returns an empty buffer backed by the given array.
func BufferOf(array []byte) Buffer {
	return array[:0]
}

// ExistingBufferOf returns a buffer backed by the given array, with n bytes already present.
func ExistingBufferOf(array []byte, n int) Buffer {
	return array[:n]
}

// AppendByte appends b if there is room for it.  It returns false, leaving the buffer untouched, if the
// buffer is already full.
func (buffer *Buffer) AppendByte(b byte) bool {
	n := len(*buffer)
	if n == cap(*buffer) {
		return false
	}

	*buffer = (*buffer)[:n+1]
	(*buffer)[n] = b
	return true
}

// CopyIn copies bytes from in to the blank portion of the buffer and returns the number of bytes copied.
func (buffer *Buffer) CopyIn(in []byte) int {
	avail := (*buffer)[len(*buffer):cap(*buffer)]
	n := copy(avail, in)
	*buffer = (*buffer)[:len(*buffer)+n]
	return n
}

// Full returns true iff the buffer has no remaining capacity.
func (buffer Buffer) Full() bool {
	return len(buffer) == cap(buffer)
}

// Data returns the slice of valid bytes in buffer.  This is the same as slicing the buffer.
func (buffer Buffer) Data() []byte {
	return buffer
}

// Len returns the number of valid bytes in buffer.
func (buffer Buffer) Len() int {
	return len(buffer)
}

// Cap returns the fixed capacity of buffer.
func (buffer Buffer) Cap() int {
	return cap(buffer)
}

// Avail returns the number of bytes that can still be appended.
func (buffer Buffer) Avail() int {
	return cap(buffer) - len(buffer)
}

// Empty returns true iff buffer contains no data.
func (buffer Buffer) Empty() bool {
	return len(buffer) == 0
}

// Consume alters buffer so that all but the first n bytes are copied to the front and become the new valid
// region.
func (buffer *Buffer) Consume(n int) {
	switch {
	case n > len(*buffer):
		panic("buf: consuming more bytes than are available in buffer")
	case n == len(*buffer):
		*buffer = (*buffer)[:0]
	case n < len(*buffer):
		remaining := copy(*buffer, (*buffer)[n:len(*buffer)])
		*buffer = (*buffer)[:remaining]
	}
}

// CopyOut copies as many valid bytes as fit into *out, consumes them from buffer, and advances *out.
func (buffer *Buffer) CopyOut(out *[]byte) int {
	n := copy(*out, *buffer)
	buffer.Consume(n)
	*out = (*out)[n:]
	return n
}

// Reset alters buffer to contain no valid bytes, reusing the same underlying array.
func (buffer *Buffer) Reset() {
	*buffer = (*buffer)[:0]
}

// A Cursor reads forward through an immutable byte sequence.  The unread bytes are the cursor itself.
type Cursor []byte

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) Cursor {
	return data
}

// Len returns the number of unread bytes.
func (cursor Cursor) Len() int {
	return len(cursor)
}

// Next returns the next byte and advances past it.  ok is false if the cursor is exhausted.
func (cursor *Cursor) Next() (b byte, ok bool) {
	if len(*cursor) == 0 {
		return
	}

	b, ok = (*cursor)[0], true
	*cursor = (*cursor)[1:]
	return
}

// Advance skips n bytes.
func (cursor *Cursor) Advance(n int) {
	if n > len(*cursor) {
		panic("buf: advancing cursor past end of data")
	}
	*cursor = (*cursor)[n:]
}

// Rest returns the unread bytes without consuming them.
func (cursor Cursor) Rest() []byte {
	return cursor
}

// CopyNew returns a fresh slice containing the same bytes as an existing slice.
func CopyNew(slice []byte) []byte {
	out := make([]byte, len(slice))
	copy(out, slice)
	return out
}

// Zero sets all bytes of a slice to zero.
func Zero(slice []byte) {
	for i := range slice {
		slice[i] = 0
	}
}
