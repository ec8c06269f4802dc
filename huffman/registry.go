// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// CoderConstructor takes a map of parameters and builds a SymbolCoder.  The constructor must return a
// suitable error if it encounters any unrecognized requisite parameters, checking for them using the
// semantics of CheckUnackedParams.
type CoderConstructor func(params map[string]string) (SymbolCoder, error)

var registeredCoders = make(map[string]CoderConstructor)
var registeredCoderMutex sync.Mutex

// RegisterCoder registers that coders named by name can be constructed by using constructor.  It panics if
// a coder constructor of this name is already registered.
func RegisterCoder(name string, constructor CoderConstructor) {
	registeredCoderMutex.Lock()
	defer registeredCoderMutex.Unlock()
	_, already := registeredCoders[name]
	if already {
		panic("huffman: registering coder '" + name + "' twice")
	}

	registeredCoders[name] = constructor
}

// CodersAvailable returns a sorted list of all registered coder names.
func CodersAvailable() []string {
	registeredCoderMutex.Lock()
	defer registeredCoderMutex.Unlock()

	names := []string{}
	for name := range registeredCoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoderAvailable returns true iff a coder with the given name has been registered.
func CoderAvailable(name string) bool {
	registeredCoderMutex.Lock()
	defer registeredCoderMutex.Unlock()

	_, ok := registeredCoders[name]
	return ok
}

func getCoderConstructor(name string) (result CoderConstructor, ok bool) {
	registeredCoderMutex.Lock()
	defer registeredCoderMutex.Unlock()
	result, ok = registeredCoders[name]
	return
}

const suffixOptional = "?"

// CoderSpec represents the name of a coder to use, plus unparsed coder-specific parameters.
type CoderSpec struct {
	Name   string
	Params map[string]string
}

// ParseCoderSpec parses a coder name followed by KEY=VALUE parameters.
func ParseCoderSpec(args []string) (*CoderSpec, error) {
	if len(args) == 0 {
		return nil, &ParameterError{ParameterMissing, "coder name", ""}
	}

	spec := &CoderSpec{
		Name:   args[0],
		Params: make(map[string]string),
	}
	for _, pairArg := range args[1:] {
		equals := strings.IndexRune(pairArg, '=')
		if equals <= 0 {
			return nil, &ParameterError{ParameterInvalid, "parameter", pairArg}
		}

		spec.Params[pairArg[:equals]] = pairArg[equals+1:]
	}

	return spec, nil
}

// Build constructs a live coder from the spec based on the set of registered coder constructors.
func (spec *CoderSpec) Build() (SymbolCoder, error) {
	constructor, ok := getCoderConstructor(spec.Name)
	if !ok {
		return nil, ErrInvalidCoderName
	}

	params := spec.Params
	if params == nil {
		params = map[string]string{}
	}
	return constructor(params)
}

func (spec *CoderSpec) String() string {
	keys := make([]string, 0, len(spec.Params))
	for k := range spec.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{spec.Name}
	for _, k := range keys {
		parts = append(parts, k+"="+spec.Params[k])
	}
	return strings.Join(parts, " ")
}

// CheckUnackedParams ensures that all parameters in params are either acknowledged by being associated
// with a true value in ackedParams or are optional due to being suffixed with a question mark.  If any
// unacknowledged requisite parameters are present, it returns an appropriate error.
func CheckUnackedParams(params map[string]string, ackedParams map[string]bool) error {
	for key := range params {
		if !ackedParams[key] && !strings.HasSuffix(key, suffixOptional) {
			return &ParameterError{ParameterUnexpected, "parameter", key}
		}
	}

	return nil
}

// LookupParam finds key in params, either as given or with the optional suffix, and marks whichever form
// was present as acknowledged.
func LookupParam(params map[string]string, acked map[string]bool, key string) (value string, ok bool) {
	for _, k := range []string{key, key + suffixOptional} {
		if value, ok = params[k]; ok {
			acked[k] = true
			return
		}
	}
	return
}

// LookupIntParam is LookupParam for integer values in [lo, hi].  A missing parameter yields def.
func LookupIntParam(params map[string]string, acked map[string]bool, key string, def, lo, hi int) (int, error) {
	str, ok := LookupParam(params, acked, key)
	if !ok {
		return def, nil
	}

	n, err := strconv.Atoi(str)
	if err != nil || n < lo || n > hi {
		return 0, &ParameterError{ParameterInvalid, "parameter", key}
	}
	return n, nil
}

type flatCoder struct{}

func (flatCoder) EncodeSymbol(sym byte) Code {
	return Code{Pattern: uint32(sym), NumBits: 8}
}

func (flatCoder) DecodeSymbol(window uint32) (byte, uint8) {
	return byte(window >> (MaxPatternBits - 8)), 8
}

// Flat is a SymbolCoder that gives every symbol its own eight-bit value as its code.
var Flat SymbolCoder = flatCoder{}

func makeFlatCoder(params map[string]string) (SymbolCoder, error) {
	if err := CheckUnackedParams(params, nil); err != nil {
		return nil, err
	}

	return Flat, nil
}

func init() {
	RegisterCoder("flat", makeFlatCoder)
}
