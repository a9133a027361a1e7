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

package eval

import (
	"github.com/pingcap/actorflow/pkg/dataflow"
)

// Expr is a node of an actor-local expression tree.
type Expr interface {
	exprNode()
}

// Op is a binary operator.
type Op string

// Binary operators.
const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLe  Op = "<="
	OpGt  Op = ">"
	OpGe  Op = ">="
)

// Const evaluates to a constant value.
type Const struct {
	Value dataflow.Value
}

// Ident looks a name up in the environment. The value is not dereferenced.
type Ident struct {
	Name string
}

// Let evaluates Value, binds it to Name and evaluates Body in the extended
// environment.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
}

// Seq evaluates its expressions in order and yields the last value.
type Seq struct {
	Exprs []Expr
}

// Assign rebinds an existing name, typically an actor field.
type Assign struct {
	Name  string
	Value Expr
}

// BinOp applies Op to both operands, dereferencing them.
type BinOp struct {
	Op    Op
	Left  Expr
	Right Expr
}

// If evaluates Then or Else depending on the dereferenced Cond.
// A nil Else yields Nil.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Tuple constructs a tuple. Elements are not dereferenced, so slots may hold
// unbound variables which bind in any order.
type Tuple struct {
	Elems []Expr
}

// Index reads a tuple slot. Reading a slot that is still unbound suspends.
type Index struct {
	Tuple Expr
	Index Expr
}

// Await dereferences the value of Expr, suspending until it is bound.
type Await struct {
	Expr Expr
}

// Ask sends a request and evaluates to its reply variable without waiting.
type Ask struct {
	Target   Expr
	Selector string
	Payload  Expr
}

// Tell sends a message that has no reply.
type Tell struct {
	Target   Expr
	Selector string
	Payload  Expr
}

// Spawn creates a child actor and evaluates to its reference.
type Spawn struct {
	Template Template
	Args     []Expr
}

// Self evaluates to the reference of the running actor.
type Self struct{}

// Stop requests the termination of the running actor once the current
// handler completes.
type Stop struct{}

// Raise fails the computation. Raising a caught Failure re-raises the
// original error.
type Raise struct {
	Value Expr
}

// Try evaluates Body. If it fails, Handler is evaluated with the failure
// bound to Catch.
type Try struct {
	Body    Expr
	Catch   string
	Handler Expr
}

// NativeFunc is a host function applied to dereferenced arguments.
type NativeFunc func(args []dataflow.Value) (dataflow.Value, error)

// Call applies a host function.
type Call struct {
	Name string
	Fn   NativeFunc
	Args []Expr
}

func (*Const) exprNode()  {}
func (*Ident) exprNode()  {}
func (*Let) exprNode()    {}
func (*Seq) exprNode()    {}
func (*Assign) exprNode() {}
func (*BinOp) exprNode()  {}
func (*If) exprNode()     {}
func (*Tuple) exprNode()  {}
func (*Index) exprNode()  {}
func (*Await) exprNode()  {}
func (*Ask) exprNode()    {}
func (*Tell) exprNode()   {}
func (*Spawn) exprNode()  {}
func (*Self) exprNode()   {}
func (*Stop) exprNode()   {}
func (*Raise) exprNode()  {}
func (*Try) exprNode()    {}
func (*Call) exprNode()   {}

// Lit is a shorthand for a constant expression.
func Lit(v dataflow.Value) *Const { return &Const{Value: v} }

// Name is a shorthand for an identifier expression.
func Name(name string) *Ident { return &Ident{Name: name} }

// Bin is a shorthand for a binary operation.
func Bin(op Op, left, right Expr) *BinOp { return &BinOp{Op: op, Left: left, Right: right} }

// AskOf is a shorthand for an ask with a nil payload.
func AskOf(target Expr, selector string) *Ask {
	return &Ask{Target: target, Selector: selector}
}
