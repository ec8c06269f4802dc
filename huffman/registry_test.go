// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blanu/huffstream/huffman"
)

func TestParseCoderSpec(t *testing.T) {
	spec, err := huffman.ParseCoderSpec([]string{"sample", "path=x=y", "maxbits?=12"})
	if err != nil {
		t.Fatal(err)
	}
	if spec.Name != "sample" || spec.Params["path"] != "x=y" || spec.Params["maxbits?"] != "12" {
		t.Errorf("got %#v", spec)
	}
	if s := spec.String(); s != "sample maxbits?=12 path=x=y" {
		t.Errorf("String() = %q", s)
	}
}

func TestParseCoderSpecRejects(t *testing.T) {
	cases := []struct {
		args []string
		how  huffman.ParameterErrorHow
	}{
		{nil, huffman.ParameterMissing},
		{[]string{"flat", "novalue"}, huffman.ParameterInvalid},
		{[]string{"flat", "=value"}, huffman.ParameterInvalid},
	}

	for _, c := range cases {
		_, err := huffman.ParseCoderSpec(c.args)
		var pe *huffman.ParameterError
		if !errors.As(err, &pe) || pe.How != c.how {
			t.Errorf("%q: got %v", c.args, err)
		}
	}
}

func TestBuildFlat(t *testing.T) {
	spec := &huffman.CoderSpec{Name: "flat"}
	coder, err := spec.Build()
	if err != nil {
		t.Fatal(err)
	}

	enc := huffman.NewEncoder(coder)
	if out := encodeAll(t, enc, []byte("hello")); !bytes.Equal(out, []byte("hello")) {
		t.Errorf("flat encoding got %q", out)
	}
}

func TestBuildRejects(t *testing.T) {
	if _, err := (&huffman.CoderSpec{Name: "no-such-coder"}).Build(); !errors.Is(err, huffman.ErrInvalidCoderName) {
		t.Errorf("unknown name got %v", err)
	}

	spec := &huffman.CoderSpec{Name: "flat", Params: map[string]string{"extra": "1"}}
	_, err := spec.Build()
	var pe *huffman.ParameterError
	if !errors.As(err, &pe) || pe.How != huffman.ParameterUnexpected || pe.Specific != "extra" {
		t.Errorf("unexpected parameter got %v", err)
	}

	spec.Params = map[string]string{"extra?": "1"}
	if _, err := spec.Build(); err != nil {
		t.Errorf("optional parameter got %v", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("registering flat again did not panic")
		}
	}()

	huffman.RegisterCoder("flat", func(map[string]string) (huffman.SymbolCoder, error) {
		return huffman.Flat, nil
	})
}

func TestCodersAvailable(t *testing.T) {
	found := false
	for _, name := range huffman.CodersAvailable() {
		if name == "flat" {
			found = true
		}
	}
	if !found || !huffman.CoderAvailable("flat") {
		t.Errorf("flat not listed")
	}
	if huffman.CoderAvailable("no-such-coder") {
		t.Errorf("no-such-coder listed")
	}
}

func TestLookupIntParam(t *testing.T) {
	params := map[string]string{"a": "10", "b?": "3", "c": "x"}
	acked := make(map[string]bool)

	if n, err := huffman.LookupIntParam(params, acked, "a", 0, 1, 20); err != nil || n != 10 {
		t.Errorf("a: %d, %v", n, err)
	}
	if n, err := huffman.LookupIntParam(params, acked, "b", 0, 1, 20); err != nil || n != 3 {
		t.Errorf("b: %d, %v", n, err)
	}
	if n, err := huffman.LookupIntParam(params, acked, "d", 7, 1, 20); err != nil || n != 7 {
		t.Errorf("d: %d, %v", n, err)
	}
	if _, err := huffman.LookupIntParam(params, acked, "a", 0, 11, 20); err == nil {
		t.Errorf("out of range value accepted")
	}

	var pe *huffman.ParameterError
	err := huffman.CheckUnackedParams(params, acked)
	if !errors.As(err, &pe) || pe.Specific != "c" {
		t.Errorf("unacked check got %v", err)
	}

	if _, err := huffman.LookupIntParam(params, acked, "c", 0, 0, 1); !errors.As(err, &pe) || pe.How != huffman.ParameterInvalid {
		t.Errorf("non-numeric value got %v", err)
	}
	if err := huffman.CheckUnackedParams(params, acked); err != nil {
		t.Errorf("all acked got %v", err)
	}
}
