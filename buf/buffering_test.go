// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package buf

import (
	"bytes"
	"testing"
)

func TestBufferAppend(t *testing.T) {
	buffer := NewBuffer(2)
	if !buffer.Empty() || buffer.Avail() != 2 {
		t.Fatalf("fresh buffer: len %d avail %d", buffer.Len(), buffer.Avail())
	}

	if !buffer.AppendByte('a') || !buffer.AppendByte('b') {
		t.Fatalf("append into room failed")
	}
	if buffer.AppendByte('c') {
		t.Errorf("append into full buffer succeeded")
	}
	if !buffer.Full() || string(buffer.Data()) != "ab" {
		t.Errorf("got %q, full %v", buffer.Data(), buffer.Full())
	}

	buffer.Reset()
	if !buffer.Empty() || buffer.Cap() != 2 {
		t.Errorf("reset: len %d cap %d", buffer.Len(), buffer.Cap())
	}
}

func TestBufferCopyInOut(t *testing.T) {
	buffer := BufferOf(make([]byte, 4))
	if n := buffer.CopyIn([]byte("hello")); n != 4 {
		t.Fatalf("copied in %d", n)
	}

	out := make([]byte, 3)
	rest := out
	if n := buffer.CopyOut(&rest); n != 3 || len(rest) != 0 {
		t.Fatalf("copied out %d, %d left", n, len(rest))
	}
	if string(out) != "hel" || string(buffer.Data()) != "l" {
		t.Errorf("out %q, left %q", out, buffer.Data())
	}
}

func TestBufferConsume(t *testing.T) {
	buffer := ExistingBufferOf([]byte("abcdef"), 4)
	buffer.Consume(1)
	if string(buffer.Data()) != "bcd" {
		t.Errorf("got %q", buffer.Data())
	}
	buffer.Consume(3)
	if !buffer.Empty() {
		t.Errorf("got %q", buffer.Data())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("over-consuming did not panic")
		}
	}()
	buffer.Consume(1)
}

func TestCursor(t *testing.T) {
	cursor := NewCursor([]byte("xyz"))

	b, ok := cursor.Next()
	if !ok || b != 'x' || cursor.Len() != 2 {
		t.Fatalf("got %q %v, %d left", b, ok, cursor.Len())
	}
	cursor.Advance(2)
	if _, ok := cursor.Next(); ok {
		t.Errorf("exhausted cursor yielded a byte")
	}
	if len(cursor.Rest()) != 0 {
		t.Errorf("rest %q", cursor.Rest())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("advancing past the end did not panic")
		}
	}()
	cursor.Advance(1)
}

func TestHelpers(t *testing.T) {
	src := []byte("abc")
	dup := CopyNew(src)
	Zero(src)
	if !bytes.Equal(dup, []byte("abc")) || !bytes.Equal(src, []byte{0, 0, 0}) {
		t.Errorf("dup %q, src %v", dup, src)
	}

	out := make([]byte, 2)
	outRest, inRest := out, dup
	if n := CopyAdvance(&outRest, &inRest); n != 2 || len(outRest) != 0 || string(inRest) != "c" {
		t.Errorf("copied %d, %d out left, in left %q", n, len(outRest), inRest)
	}
}
