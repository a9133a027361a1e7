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
	"errors"
	"testing"

	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	target   dataflow.Value
	selector string
	payload  dataflow.Value
	reply    *dataflow.Var
}

type fakeTemplate string

func (t fakeTemplate) TemplateName() string { return string(t) }

// fakeRuntime records what a computation asks of its actor.
type fakeRuntime struct {
	store   *dataflow.Store
	resumed []*dataflow.Var
	asks    []sentMessage
	tells   []sentMessage
	spawned []string
	stopped bool
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{store: dataflow.NewStore("eval-test")}
}

func (r *fakeRuntime) Resume(v *dataflow.Var)  { r.resumed = append(r.resumed, v) }
func (r *fakeRuntime) Store() *dataflow.Store  { return r.store }
func (r *fakeRuntime) Waiter() dataflow.Waiter { return r }
func (r *fakeRuntime) Self() dataflow.Value    { return dataflow.Str("self") }
func (r *fakeRuntime) Stop()                   { r.stopped = true }

func (r *fakeRuntime) Ask(target dataflow.Value, selector string, payload dataflow.Value) (*dataflow.Var, error) {
	if _, ok := target.(dataflow.Str); !ok {
		return nil, cerrors.ErrNotAnActor.GenWithStackByArgs(target)
	}
	reply := r.store.Allocate()
	r.asks = append(r.asks, sentMessage{target, selector, payload, reply})
	return reply, nil
}

func (r *fakeRuntime) Tell(target dataflow.Value, selector string, payload dataflow.Value) error {
	r.tells = append(r.tells, sentMessage{target: target, selector: selector, payload: payload})
	return nil
}

func (r *fakeRuntime) Spawn(tmpl Template, args []dataflow.Value) (dataflow.Value, error) {
	r.spawned = append(r.spawned, tmpl.TemplateName())
	return dataflow.Str(tmpl.TemplateName()), nil
}

func evalDone(t *testing.T, rt *fakeRuntime, e Expr, env *Env) dataflow.Value {
	c := NewComputation(e, env)
	require.Equal(t, Done, c.Run(rt), "err: %v", c.Err())
	return c.Result()
}

func evalErr(t *testing.T, rt *fakeRuntime, e Expr) error {
	c := NewComputation(e, NewEnv(nil))
	require.Equal(t, Failed, c.Run(rt))
	return c.Err()
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		expr     Expr
		expected dataflow.Value
	}{
		{Bin(OpAdd, Lit(dataflow.Int(1)), Bin(OpMul, Lit(dataflow.Int(2)), Lit(dataflow.Int(3)))), dataflow.Int(7)},
		{Bin(OpSub, Lit(dataflow.Int(1)), Lit(dataflow.Int(5))), dataflow.Int(-4)},
		{Bin(OpDiv, Lit(dataflow.Int(7)), Lit(dataflow.Int(2))), dataflow.Int(3)},
		{Bin(OpMod, Lit(dataflow.Int(7)), Lit(dataflow.Int(2))), dataflow.Int(1)},
		{Bin(OpAdd, Lit(dataflow.Int(1)), Lit(dataflow.Float(0.5))), dataflow.Float(1.5)},
		{Bin(OpDiv, Lit(dataflow.Float(1)), Lit(dataflow.Int(4))), dataflow.Float(0.25)},
		{Bin(OpAdd, Lit(dataflow.Str("ab")), Lit(dataflow.Str("c"))), dataflow.Str("abc")},
		{Bin(OpLt, Lit(dataflow.Int(1)), Lit(dataflow.Int(2))), dataflow.Bool(true)},
		{Bin(OpGe, Lit(dataflow.Str("a")), Lit(dataflow.Str("b"))), dataflow.Bool(false)},
		{Bin(OpLe, Lit(dataflow.Float(2)), Lit(dataflow.Int(2))), dataflow.Bool(true)},
		{Bin(OpEq, Lit(dataflow.NewTuple(dataflow.Int(1))), Lit(dataflow.NewTuple(dataflow.Int(1)))), dataflow.Bool(true)},
		{Bin(OpNe, Lit(dataflow.Int(1)), Lit(dataflow.Str("1"))), dataflow.Bool(true)},
	}
	rt := newFakeRuntime()
	for _, tc := range testCases {
		require.Equal(t, tc.expected, evalDone(t, rt, tc.expr, NewEnv(nil)))
	}
}

func TestEvaluationErrors(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	err := evalErr(t, rt, Bin(OpAdd, Lit(dataflow.Int(1)), Lit(dataflow.Str("a"))))
	require.True(t, cerrors.ErrTypeMismatch.Equal(err), err)
	require.Contains(t, err.Error(), "operator '+' cannot be applied to int and str")

	err = evalErr(t, rt, Bin(OpDiv, Lit(dataflow.Int(1)), Lit(dataflow.Int(0))))
	require.True(t, cerrors.ErrDivisionByZero.Equal(err))
	err = evalErr(t, rt, Bin(OpMod, Lit(dataflow.Float(1)), Lit(dataflow.Float(2))))
	require.True(t, cerrors.ErrTypeMismatch.Equal(err))
	err = evalErr(t, rt, Name("missing"))
	require.True(t, cerrors.ErrUnboundIdentifier.Equal(err))
	err = evalErr(t, rt, &Assign{Name: "missing", Value: Lit(dataflow.Int(1))})
	require.True(t, cerrors.ErrUnboundIdentifier.Equal(err))
	err = evalErr(t, rt, &If{Cond: Lit(dataflow.Int(1)), Then: Lit(dataflow.Int(2))})
	require.True(t, cerrors.ErrTypeMismatch.Equal(err))
	err = evalErr(t, rt, &Index{Tuple: Lit(dataflow.NewTuple()), Index: Lit(dataflow.Int(0))})
	require.True(t, cerrors.ErrIndexOutOfRange.Equal(err))
	err = evalErr(t, rt, &Index{Tuple: Lit(dataflow.Int(1)), Index: Lit(dataflow.Int(0))})
	require.True(t, cerrors.ErrTypeMismatch.Equal(err))
	err = evalErr(t, rt, &Call{Name: "nope"})
	require.True(t, cerrors.ErrUnboundIdentifier.Equal(err))
}

func TestBindingForms(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	env := NewEnv(nil)
	env.Define("count", dataflow.Int(1))

	// let x = count + 1 in (count := x * 10; if count > 10 then "big" else "small")
	e := &Let{
		Name:  "x",
		Value: Bin(OpAdd, Name("count"), Lit(dataflow.Int(1))),
		Body: &Seq{Exprs: []Expr{
			&Assign{Name: "count", Value: Bin(OpMul, Name("x"), Lit(dataflow.Int(10)))},
			&If{
				Cond: Bin(OpGt, Name("count"), Lit(dataflow.Int(10))),
				Then: Lit(dataflow.Str("big")),
				Else: Lit(dataflow.Str("small")),
			},
		}},
	}
	require.Equal(t, dataflow.Str("big"), evalDone(t, rt, e, env))
	v, ok := env.Lookup("count")
	require.True(t, ok)
	require.Equal(t, dataflow.Int(20), v)
	_, ok = env.Lookup("x")
	require.False(t, ok)

	require.Equal(t, dataflow.Nil{}, evalDone(t, rt, &Seq{}, env))
	require.Equal(t, dataflow.Nil{}, evalDone(t, rt, &If{Cond: Lit(dataflow.Bool(false)), Then: Lit(dataflow.Int(1))}, env))
}

// permutations returns every ordering of 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := make([]int, 0, n)
			q = append(q, p[:i]...)
			q = append(q, n-1)
			q = append(q, p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestSuspendAndResumeInAnyOrder(t *testing.T) {
	t.Parallel()

	orders := permutations(3)
	require.Len(t, orders, 6)
	for _, order := range orders {
		rt := newFakeRuntime()
		vars := []*dataflow.Var{rt.store.Allocate(), rt.store.Allocate(), rt.store.Allocate()}
		env := NewEnv(nil)
		env.Define("n1", vars[0])
		env.Define("n2", vars[1])
		env.Define("n3", vars[2])

		c := NewComputation(Bin(OpAdd, Name("n1"), Bin(OpMul, Name("n2"), Name("n3"))), env)
		require.Equal(t, Suspended, c.Run(rt))
		for k, i := range order {
			waiting := c.WaitingOn()
			require.NoError(t, rt.store.Bind(vars[i], dataflow.Int(i+1)))
			if vars[i] != waiting {
				continue
			}
			require.Same(t, waiting, rt.resumed[len(rt.resumed)-1])
			outcome := c.Run(rt)
			if k < len(order)-1 {
				require.Equal(t, Suspended, outcome, "order %v", order)
			}
		}
		require.Equal(t, Done, c.Run(rt), "order %v", order)
		require.Equal(t, dataflow.Int(7), c.Result(), "order %v", order)
	}
}

func TestTupleSlotsBindInAnyOrder(t *testing.T) {
	t.Parallel()

	for _, order := range permutations(3) {
		rt := newFakeRuntime()
		vars := []*dataflow.Var{rt.store.Allocate(), rt.store.Allocate(), rt.store.Allocate()}
		env := NewEnv(nil)
		env.Define("n1", vars[0])
		env.Define("n2", vars[1])
		env.Define("n3", vars[2])

		// Building the tuple never waits for its slots.
		tuple := evalDone(t, rt, &Tuple{Elems: []Expr{Name("n1"), Name("n2"), Name("n3")}}, env)
		env.Define("t", tuple)

		read := NewComputation(&Index{Tuple: Name("t"), Index: Lit(dataflow.Int(int64(order[len(order)-1])))}, env)
		require.Equal(t, Suspended, read.Run(rt))
		for _, i := range order {
			require.NoError(t, rt.store.Bind(vars[i], dataflow.Int(i+1)))
		}
		require.Equal(t, Done, read.Run(rt))
		require.Equal(t, dataflow.Int(order[len(order)-1]+1), read.Result())
		require.True(t, rt.store.Determined(tuple))
		require.True(t, dataflow.Equal(
			dataflow.NewTuple(dataflow.Int(1), dataflow.Int(2), dataflow.Int(3)),
			evalDone(t, rt, &Tuple{Elems: []Expr{
				&Await{Expr: Name("n1")}, &Await{Expr: Name("n2")}, &Await{Expr: Name("n3")},
			}}, env),
		))
	}
}

func TestTryCatchesFailures(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	boom := errors.New("boom")
	failed := rt.store.Allocate()
	require.NoError(t, rt.store.Fail(failed, boom))
	env := NewEnv(nil)
	env.Define("failed", failed)

	// A failed variable propagates its original error through the catch.
	v := evalDone(t, rt, &Try{
		Body:    Bin(OpAdd, Name("failed"), Lit(dataflow.Int(1))),
		Catch:   "err",
		Handler: Name("err"),
	}, env)
	failure, ok := v.(*dataflow.Failure)
	require.True(t, ok)
	require.Same(t, boom, failure.Err)

	// Re-raising a caught failure keeps its identity.
	c := NewComputation(&Try{
		Body:    &Raise{Value: Name("failed")},
		Catch:   "err",
		Handler: &Raise{Value: Name("err")},
	}, env)
	require.Equal(t, Failed, c.Run(rt))
	require.Same(t, boom, c.Err())

	// Raising a plain value.
	c = NewComputation(&Raise{Value: Lit(dataflow.Str("bad input"))}, env)
	require.Equal(t, Failed, c.Run(rt))
	require.True(t, cerrors.ErrRaised.Equal(c.Err()))
	require.Contains(t, c.Err().Error(), `raised: "bad input"`)

	// The body value is returned when nothing fails, and a nested try
	// only catches failures of its own body.
	v = evalDone(t, rt, &Try{
		Body: &Seq{Exprs: []Expr{
			&Try{Body: Lit(dataflow.Int(1)), Handler: Lit(dataflow.Int(2))},
			&Raise{Value: Lit(dataflow.Int(3))},
		}},
		Handler: Lit(dataflow.Str("outer")),
	}, env)
	require.Equal(t, dataflow.Str("outer"), v)
}

func TestMessagingForms(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	env := NewEnv(nil)
	env.Define("peer", dataflow.Str("peer"))

	// Ask returns the reply variable without waiting for it.
	reply := evalDone(t, rt, &Ask{Target: Name("peer"), Selector: "get", Payload: Lit(dataflow.Int(5))}, env)
	require.Len(t, rt.asks, 1)
	require.Same(t, rt.asks[0].reply, reply)
	require.Equal(t, "get", rt.asks[0].selector)
	require.Equal(t, dataflow.Int(5), rt.asks[0].payload)

	// Awaiting the reply suspends until the receiver binds it.
	env.Define("r", reply)
	c := NewComputation(Bin(OpAdd, &Await{Expr: Name("r")}, Lit(dataflow.Int(1))), env)
	require.Equal(t, Suspended, c.Run(rt))
	require.Same(t, reply, c.WaitingOn())
	require.NoError(t, rt.store.Bind(rt.asks[0].reply, dataflow.Int(41)))
	require.Equal(t, Done, c.Run(rt))
	require.Equal(t, dataflow.Int(42), c.Result())

	require.Equal(t, dataflow.Nil{}, evalDone(t, rt, &Tell{Target: Name("peer"), Selector: "inc"}, env))
	require.Len(t, rt.tells, 1)
	require.Equal(t, dataflow.Nil{}, rt.tells[0].payload)

	err := evalErr(t, rt, AskOf(Lit(dataflow.Int(1)), "get"))
	require.True(t, cerrors.ErrNotAnActor.Equal(err))

	require.Equal(t, dataflow.Str("child"), evalDone(t, rt, &Spawn{Template: fakeTemplate("child")}, env))
	require.Equal(t, []string{"child"}, rt.spawned)
	require.Equal(t, dataflow.Str("self"), evalDone(t, rt, &Self{}, env))
	evalDone(t, rt, &Stop{}, env)
	require.True(t, rt.stopped)
}

func TestEqualityReadsTupleSlots(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	a, b := rt.store.Allocate(), rt.store.Allocate()
	env := NewEnv(nil)
	env.Define("t", dataflow.NewTuple(a, b))
	expected := Lit(dataflow.NewTuple(dataflow.Int(1), dataflow.Int(2)))

	eq := NewComputation(Bin(OpEq, Name("t"), expected), env)
	ne := NewComputation(Bin(OpNe, Name("t"), expected), env)
	require.Equal(t, Suspended, eq.Run(rt))
	require.Equal(t, a, eq.WaitingOn())
	require.Equal(t, Suspended, ne.Run(rt))

	require.NoError(t, rt.store.Bind(b, dataflow.Int(2)))
	require.Equal(t, Suspended, eq.Run(rt))
	require.Equal(t, a, eq.WaitingOn())

	require.NoError(t, rt.store.Bind(a, dataflow.Int(1)))
	require.Equal(t, Done, eq.Run(rt))
	require.Equal(t, dataflow.Bool(true), eq.Result())
	require.Equal(t, Done, ne.Run(rt))
	require.Equal(t, dataflow.Bool(false), ne.Result())
}

func TestEqualityMismatchInSlot(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	a, b := rt.store.Allocate(), rt.store.Allocate()
	inner := rt.store.Allocate()
	env := NewEnv(nil)
	env.Define("t", dataflow.NewTuple(a, dataflow.NewTuple(b, inner)))
	expected := Lit(dataflow.NewTuple(dataflow.Int(1), dataflow.NewTuple(dataflow.Int(2), dataflow.Int(3))))

	c := NewComputation(Bin(OpEq, Name("t"), expected), env)
	require.NoError(t, rt.store.Bind(a, dataflow.Int(1)))
	require.Equal(t, Suspended, c.Run(rt))
	require.Equal(t, b, c.WaitingOn())
	require.NoError(t, rt.store.Bind(b, dataflow.Int(2)))
	require.Equal(t, Suspended, c.Run(rt))
	require.Equal(t, inner, c.WaitingOn())
	require.NoError(t, rt.store.Bind(inner, dataflow.Int(4)))
	require.Equal(t, Done, c.Run(rt))
	require.Equal(t, dataflow.Bool(false), c.Result())

	// Lengths differ, no slot needs to be read.
	pending := rt.store.Allocate()
	env.Define("u", dataflow.NewTuple(pending))
	require.Equal(t, dataflow.Bool(true),
		evalDone(t, rt, Bin(OpNe, Name("u"), Lit(dataflow.NewTuple(dataflow.Int(1), dataflow.Int(2)))), env))
}

func TestEqualityPropagatesFailedSlot(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	a := rt.store.Allocate()
	cause := cerrors.ErrRaised.GenWithStackByArgs("boom")
	require.NoError(t, rt.store.Fail(a, cause))
	env := NewEnv(nil)
	env.Define("t", dataflow.NewTuple(a))

	c := NewComputation(Bin(OpEq, Name("t"), Lit(dataflow.NewTuple(dataflow.Int(1)))), env)
	require.Equal(t, Failed, c.Run(rt))
	require.Equal(t, cause, c.Err())
}

func TestEqualityOfCyclicValues(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	v, w := rt.store.Allocate(), rt.store.Allocate()
	require.NoError(t, rt.store.Bind(v, dataflow.NewTuple(dataflow.Int(1), v)))
	require.NoError(t, rt.store.Bind(w, dataflow.NewTuple(dataflow.Int(1), w)))
	env := NewEnv(nil)
	env.Define("v", v)
	env.Define("w", w)
	require.Equal(t, dataflow.Bool(true), evalDone(t, rt, Bin(OpEq, Name("v"), Name("w")), env))
}

func TestCallNativeFunction(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	v := rt.store.Allocate()
	env := NewEnv(nil)
	env.Define("v", v)
	sum := func(args []dataflow.Value) (dataflow.Value, error) {
		total := dataflow.Int(0)
		for _, a := range args {
			total += a.(dataflow.Int)
		}
		return total, nil
	}
	c := NewComputation(&Call{Name: "sum", Fn: sum, Args: []Expr{Lit(dataflow.Int(1)), Name("v")}}, env)
	require.Equal(t, Suspended, c.Run(rt))
	require.NoError(t, rt.store.Bind(v, dataflow.Int(2)))
	require.Equal(t, Done, c.Run(rt))
	require.Equal(t, dataflow.Int(3), c.Result())
	require.Equal(t, Done, c.Run(rt))
	require.Greater(t, c.Steps(), uint64(0))
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "done", Done.String())
	require.Equal(t, "suspended", Suspended.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "running", Outcome(0).String())
}
