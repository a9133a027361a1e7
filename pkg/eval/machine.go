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
	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

// Outcome is the state Run leaves a computation in.
type Outcome int

// Outcomes of Run.
const (
	// Done means the computation produced a value, see Result.
	Done Outcome = iota + 1
	// Suspended means the computation read an unbound variable, see
	// WaitingOn. Run it again once the waiter has been resumed.
	Suspended
	// Failed means a failure escaped every Try, see Err.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Suspended:
		return "suspended"
	case Failed:
		return "failed"
	}
	return "running"
}

type control int

const (
	ctlContinue control = iota
	ctlReturn
	ctlSuspend
	ctlFail
)

var nilExpr = &Const{Value: dataflow.Nil{}}

// frame is a node of the expression tree being evaluated. vals collects the
// values of the children evaluated so far, pc counts the children pushed.
type frame struct {
	expr Expr
	env  *Env
	pc   int
	vals []dataflow.Value
}

// Computation evaluates an expression tree as an explicit stack of frames,
// so that reading an unbound variable leaves a resumable continuation
// instead of a blocked goroutine.
//
// A Computation is not safe for concurrent use.
type Computation struct {
	stack []*frame

	outcome   Outcome
	result    dataflow.Value
	err       error
	waitingOn *dataflow.Var
	steps     uint64
}

// NewComputation creates a computation evaluating expr in env.
func NewComputation(expr Expr, env *Env) *Computation {
	c := &Computation{}
	c.push(expr, env)
	return c
}

// Run evaluates until the computation completes, fails or suspends.
// Running a completed or failed computation returns its outcome again.
func (c *Computation) Run(rt Runtime) Outcome {
	if c.outcome == Done || c.outcome == Failed {
		return c.outcome
	}
	c.waitingOn = nil
	for {
		f := c.stack[len(c.stack)-1]
		c.steps++
		ctl, v, err := c.step(rt, f)
		switch ctl {
		case ctlContinue:
		case ctlReturn:
			c.pop()
			if len(c.stack) == 0 {
				c.result = v
				c.outcome = Done
				return Done
			}
			parent := c.stack[len(c.stack)-1]
			parent.vals = append(parent.vals, v)
		case ctlSuspend:
			c.outcome = Suspended
			return Suspended
		case ctlFail:
			if !c.unwind(err) {
				c.err = err
				c.outcome = Failed
				return Failed
			}
		}
	}
}

// Result is the value of a completed computation.
func (c *Computation) Result() dataflow.Value { return c.result }

// Err is the failure of a failed computation.
func (c *Computation) Err() error { return c.err }

// WaitingOn is the variable a suspended computation is registered on.
func (c *Computation) WaitingOn() *dataflow.Var { return c.waitingOn }

// Outcome returns the outcome of the last Run, zero before the first one.
func (c *Computation) Outcome() Outcome { return c.outcome }

// Steps returns the number of reduction steps taken so far.
func (c *Computation) Steps() uint64 { return c.steps }

func (c *Computation) push(e Expr, env *Env) {
	if e == nil {
		e = nilExpr
	}
	c.stack = append(c.stack, &frame{expr: e, env: env})
}

func (c *Computation) pop() {
	c.stack[len(c.stack)-1] = nil
	c.stack = c.stack[:len(c.stack)-1]
}

// unwind pops frames until a Try whose body is running, and starts its
// handler with the failure bound. It returns false if no Try catches err.
func (c *Computation) unwind(err error) bool {
	for len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		if t, ok := f.expr.(*Try); ok && f.pc == 1 && len(f.vals) == 0 {
			env := NewEnv(f.env)
			if t.Catch != "" {
				env.Define(t.Catch, &dataflow.Failure{Err: err})
			}
			f.pc++
			c.push(t.Handler, env)
			return true
		}
		c.pop()
	}
	return false
}

// eval pushes e as the next child of f.
func (c *Computation) eval(f *frame, e Expr, env *Env) (control, dataflow.Value, error) {
	f.pc++
	c.push(e, env)
	return ctlContinue, nil, nil
}

// operands pushes the next operand of f that has not been evaluated yet.
// It returns false once all of them have values.
func (c *Computation) operands(f *frame, exprs ...Expr) bool {
	if f.pc < len(exprs) {
		c.eval(f, exprs[f.pc], f.env)
		return true
	}
	return false
}

// deref resolves v, registering the runtime's waiter if it is unbound.
func (c *Computation) deref(rt Runtime, v dataflow.Value) (dataflow.Value, control, error) {
	r := rt.Store().Resolve(v, rt.Waiter())
	switch r.Status {
	case dataflow.StatusBound:
		return r.Value, ctlContinue, nil
	case dataflow.StatusFailed:
		return nil, ctlFail, r.Err
	default:
		c.waitingOn = r.Var
		return nil, ctlSuspend, nil
	}
}

// equal compares l and r structurally, dereferencing every slot. It
// suspends on the first unbound variable.
func (c *Computation) equal(rt Runtime, l, r dataflow.Value) (bool, control, error) {
	eq, res := dataflow.EqualResolved(l, r, func(v dataflow.Value) dataflow.ReadResult {
		return rt.Store().Resolve(v, rt.Waiter())
	})
	switch res.Status {
	case dataflow.StatusFailed:
		return false, ctlFail, res.Err
	case dataflow.StatusSuspended:
		c.waitingOn = res.Var
		return false, ctlSuspend, nil
	}
	return eq, ctlContinue, nil
}

func (c *Computation) step(rt Runtime, f *frame) (control, dataflow.Value, error) {
	switch e := f.expr.(type) {
	case *Const:
		if e.Value == nil {
			return ctlReturn, dataflow.Nil{}, nil
		}
		return ctlReturn, e.Value, nil

	case *Ident:
		v, ok := f.env.Lookup(e.Name)
		if !ok {
			return ctlFail, nil, cerrors.ErrUnboundIdentifier.GenWithStackByArgs(e.Name)
		}
		return ctlReturn, v, nil

	case *Self:
		return ctlReturn, rt.Self(), nil

	case *Stop:
		rt.Stop()
		return ctlReturn, dataflow.Nil{}, nil

	case *Let:
		switch f.pc {
		case 0:
			return c.eval(f, e.Value, f.env)
		case 1:
			env := NewEnv(f.env)
			env.Define(e.Name, f.vals[0])
			return c.eval(f, e.Body, env)
		}
		return ctlReturn, f.vals[1], nil

	case *Seq:
		if c.operands(f, e.Exprs...) {
			return ctlContinue, nil, nil
		}
		if len(f.vals) == 0 {
			return ctlReturn, dataflow.Nil{}, nil
		}
		return ctlReturn, f.vals[len(f.vals)-1], nil

	case *Assign:
		if c.operands(f, e.Value) {
			return ctlContinue, nil, nil
		}
		if !f.env.Set(e.Name, f.vals[0]) {
			return ctlFail, nil, cerrors.ErrUnboundIdentifier.GenWithStackByArgs(e.Name)
		}
		return ctlReturn, dataflow.Nil{}, nil

	case *BinOp:
		if c.operands(f, e.Left, e.Right) {
			return ctlContinue, nil, nil
		}
		if e.Op == OpEq || e.Op == OpNe {
			eq, ctl, err := c.equal(rt, f.vals[0], f.vals[1])
			if ctl != ctlContinue {
				return ctl, nil, err
			}
			return ctlReturn, dataflow.Bool(eq == (e.Op == OpEq)), nil
		}
		l, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		r, ctl, err := c.deref(rt, f.vals[1])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		v, err := apply(e.Op, l, r)
		if err != nil {
			return ctlFail, nil, err
		}
		return ctlReturn, v, nil

	case *If:
		switch f.pc {
		case 0:
			return c.eval(f, e.Cond, f.env)
		case 1:
			cond, ctl, err := c.deref(rt, f.vals[0])
			if ctl != ctlContinue {
				return ctl, nil, err
			}
			b, ok := cond.(dataflow.Bool)
			if !ok {
				return ctlFail, nil, cerrors.ErrTypeMismatch.GenWithStackByArgs("if", cond.Kind(), dataflow.KindBool)
			}
			if b {
				return c.eval(f, e.Then, f.env)
			}
			return c.eval(f, e.Else, f.env)
		}
		return ctlReturn, f.vals[1], nil

	case *Tuple:
		if c.operands(f, e.Elems...) {
			return ctlContinue, nil, nil
		}
		return ctlReturn, dataflow.NewTuple(f.vals...), nil

	case *Index:
		if c.operands(f, e.Tuple, e.Index) {
			return ctlContinue, nil, nil
		}
		tv, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		iv, ctl, err := c.deref(rt, f.vals[1])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		t, ok := tv.(*dataflow.Tuple)
		i, ok2 := iv.(dataflow.Int)
		if !ok || !ok2 {
			return ctlFail, nil, cerrors.ErrTypeMismatch.GenWithStackByArgs("[]", tv.Kind(), iv.Kind())
		}
		if i < 0 || int(i) >= t.Len() {
			return ctlFail, nil, cerrors.ErrIndexOutOfRange.GenWithStackByArgs(int(i), t.Len())
		}
		slot, ctl, err := c.deref(rt, t.At(int(i)))
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		return ctlReturn, slot, nil

	case *Await:
		if c.operands(f, e.Expr) {
			return ctlContinue, nil, nil
		}
		v, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		return ctlReturn, v, nil

	case *Ask:
		if c.operands(f, e.Target, e.Payload) {
			return ctlContinue, nil, nil
		}
		target, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		reply, err := rt.Ask(target, e.Selector, f.vals[1])
		if err != nil {
			return ctlFail, nil, err
		}
		return ctlReturn, reply, nil

	case *Tell:
		if c.operands(f, e.Target, e.Payload) {
			return ctlContinue, nil, nil
		}
		target, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		if err := rt.Tell(target, e.Selector, f.vals[1]); err != nil {
			return ctlFail, nil, err
		}
		return ctlReturn, dataflow.Nil{}, nil

	case *Spawn:
		if c.operands(f, e.Args...) {
			return ctlContinue, nil, nil
		}
		ref, err := rt.Spawn(e.Template, f.vals)
		if err != nil {
			return ctlFail, nil, err
		}
		return ctlReturn, ref, nil

	case *Raise:
		if c.operands(f, e.Value) {
			return ctlContinue, nil, nil
		}
		v, ctl, err := c.deref(rt, f.vals[0])
		if ctl != ctlContinue {
			return ctl, nil, err
		}
		if failure, ok := v.(*dataflow.Failure); ok {
			return ctlFail, nil, failure.Err
		}
		return ctlFail, nil, cerrors.ErrRaised.GenWithStackByArgs(v.String())

	case *Try:
		if f.pc == 0 {
			return c.eval(f, e.Body, f.env)
		}
		// Either the body or the handler has returned.
		return ctlReturn, f.vals[len(f.vals)-1], nil

	case *Call:
		if c.operands(f, e.Args...) {
			return ctlContinue, nil, nil
		}
		if e.Fn == nil {
			return ctlFail, nil, cerrors.ErrUnboundIdentifier.GenWithStackByArgs(e.Name)
		}
		args := make([]dataflow.Value, len(f.vals))
		for i, a := range f.vals {
			v, ctl, err := c.deref(rt, a)
			if ctl != ctlContinue {
				return ctl, nil, err
			}
			args[i] = v
		}
		v, err := e.Fn(args)
		if err != nil {
			return ctlFail, nil, err
		}
		if v == nil {
			v = dataflow.Nil{}
		}
		return ctlReturn, v, nil
	}
	return ctlFail, nil, cerrors.ErrUnknownExpression.GenWithStackByArgs(f.expr)
}
