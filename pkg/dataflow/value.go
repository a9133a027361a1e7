// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package dataflow

import (
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind uint8

// Kinds of values.
const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTuple
	KindVar
	KindFailure
	KindActor
)

var kindNames = [...]string{
	KindNil:     "nil",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindStr:     "str",
	KindTuple:   "tuple",
	KindVar:     "var",
	KindFailure: "failure",
	KindActor:   "actor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable datum. A *Var is also a Value: it stands for its
// eventual binding.
type Value interface {
	Kind() Kind
	String() string
}

// Nil is the unit value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// Int is a 64-bit integer value.
type Int int64

// Float is a 64-bit floating point value.
type Float float64

// Str is a string value.
type Str string

// Kind implements Value.
func (Nil) Kind() Kind { return KindNil }

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Kind implements Value.
func (Int) Kind() Kind { return KindInt }

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// Kind implements Value.
func (Str) Kind() Kind { return KindStr }

func (Nil) String() string { return "nil" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (s Str) String() string { return strconv.Quote(string(s)) }

// Tuple is an immutable composite. Its slots may hold unbound variables
// which become bound independently of each other.
type Tuple struct {
	slots []Value
}

// NewTuple creates a tuple holding a copy of slots.
func NewTuple(slots ...Value) *Tuple {
	cp := make([]Value, len(slots))
	copy(cp, slots)
	return &Tuple{slots: cp}
}

// Kind implements Value.
func (*Tuple) Kind() Kind { return KindTuple }

// Len returns the number of slots.
func (t *Tuple) Len() int { return len(t.slots) }

// At returns the raw content of slot i, which may be an unbound *Var.
func (t *Tuple) At(i int) Value { return t.slots[i] }

func (t *Tuple) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range t.slots {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Failure carries an error as a value, it is what a catch clause binds.
type Failure struct {
	Err error
}

// Kind implements Value.
func (*Failure) Kind() Kind { return KindFailure }

func (f *Failure) String() string { return "failure(" + f.Err.Error() + ")" }

// Equal reports whether two values are structurally equal. Variables are
// compared by identity; callers wanting to compare bindings resolve first.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Tuple:
		y := b.(*Tuple)
		if x.Len() != y.Len() {
			return false
		}
		for i := range x.slots {
			if !Equal(x.slots[i], y.slots[i]) {
				return false
			}
		}
		return true
	case *Failure:
		return x.Err == b.(*Failure).Err
	case *Var:
		return x == b.(*Var)
	default:
		// Scalars and actor references are comparable.
		return a == b
	}
}

// ResolveFunc resolves a value that may be a variable, like Store.Resolve.
type ResolveFunc func(Value) ReadResult

// EqualResolved reports whether a and b are structurally equal, reading every
// variable it meets through resolve, left to right. It stops at the first
// variable that is unbound or failed and returns that read; eq is only
// meaningful when the returned status is StatusBound. Cyclic values compare
// equal when no difference is found along the cycle.
func EqualResolved(a, b Value, resolve ResolveFunc) (eq bool, r ReadResult) {
	c := &resolvingComparer{resolve: resolve, blocked: ReadResult{Status: StatusBound}}
	eq = c.equal(a, b)
	return eq, c.blocked
}

type resolvingComparer struct {
	resolve ResolveFunc
	// assumed holds the tuple pairs being compared, a pair met again is
	// taken as equal.
	assumed map[[2]*Tuple]struct{}
	blocked ReadResult
}

func (c *resolvingComparer) equal(a, b Value) bool {
	var ok bool
	if a, ok = c.deref(a); !ok {
		return false
	}
	if b, ok = c.deref(b); !ok {
		return false
	}
	x, ok := a.(*Tuple)
	if !ok {
		return Equal(a, b)
	}
	y, ok := b.(*Tuple)
	if !ok {
		return false
	}
	if x == y {
		return true
	}
	if x.Len() != y.Len() {
		return false
	}
	key := [2]*Tuple{x, y}
	if _, ok := c.assumed[key]; ok {
		return true
	}
	if c.assumed == nil {
		c.assumed = make(map[[2]*Tuple]struct{})
	}
	c.assumed[key] = struct{}{}
	for i := range x.slots {
		if !c.equal(x.slots[i], y.slots[i]) {
			return false
		}
	}
	return true
}

func (c *resolvingComparer) deref(v Value) (Value, bool) {
	if _, ok := v.(*Var); !ok {
		return v, true
	}
	r := c.resolve(v)
	if r.Status != StatusBound {
		c.blocked = r
		return nil, false
	}
	return r.Value, true
}
