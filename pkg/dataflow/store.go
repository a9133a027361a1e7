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
	"context"
	"sync"

	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Status is the outcome of a Read.
type Status int

// Read outcomes.
const (
	StatusBound Status = iota + 1
	StatusFailed
	StatusSuspended
)

// ReadResult is the result of reading a variable.
//
// Var is the variable the reader was registered on when Status is
// StatusSuspended. It differs from the variable read when that one is an
// alias of another unbound variable.
type ReadResult struct {
	Status Status
	Value  Value
	Err    error
	Var    *Var
}

// Store allocates dataflow variables and mediates every binding and read.
//
// Variables are not kept in a table: a *Var is reclaimed by the garbage
// collector once no actor, waiter or composite value references it.
type Store struct {
	nextID atomic.Uint64

	// aliasMu serializes bindings of a variable to another variable, so that
	// cycle detection cannot race with a concurrent alias binding.
	aliasMu sync.Mutex

	allocated prometheus.Counter
	bound     prometheus.Counter
	failed    prometheus.Counter
	rejected  prometheus.Counter
	suspended prometheus.Counter
}

// NewStore creates a new Store. name labels its metrics.
func NewStore(name string) *Store {
	return &Store{
		allocated: varAllocatedCounter.WithLabelValues(name),
		bound:     varResolvedCounter.WithLabelValues(name, "bound"),
		failed:    varResolvedCounter.WithLabelValues(name, "failed"),
		rejected:  varResolvedCounter.WithLabelValues(name, "rejected"),
		suspended: readSuspendedCounter.WithLabelValues(name),
	}
}

// Allocate creates a fresh unbound variable.
func (s *Store) Allocate() *Var {
	s.allocated.Inc()
	return &Var{id: s.nextID.Add(1)}
}

// Bind binds v to value and resumes every waiter. It fails with
// ErrAlreadyBound if v is already bound or failed, in which case the stored
// binding is left untouched.
func (s *Store) Bind(v *Var, value Value) error {
	if value == nil {
		s.rejected.Inc()
		return cerrors.ErrNilValue.GenWithStackByArgs(v)
	}
	if alias, ok := value.(*Var); ok {
		s.aliasMu.Lock()
		defer s.aliasMu.Unlock()
		if reaches(alias, v) {
			s.rejected.Inc()
			return cerrors.ErrCyclicBinding.GenWithStackByArgs(v, alias)
		}
	}
	waiters, ok := v.resolve(value, nil)
	if !ok {
		s.rejected.Inc()
		return cerrors.ErrAlreadyBound.GenWithStackByArgs(v)
	}
	s.bound.Inc()
	for _, w := range waiters {
		w.Resume(v)
	}
	return nil
}

// Fail resolves v to a failure. Every current and future reader observes err.
func (s *Store) Fail(v *Var, err error) error {
	if err == nil {
		s.rejected.Inc()
		return cerrors.ErrNilValue.GenWithStackByArgs(v)
	}
	waiters, ok := v.resolve(nil, err)
	if !ok {
		s.rejected.Inc()
		return cerrors.ErrAlreadyBound.GenWithStackByArgs(v)
	}
	s.failed.Inc()
	for _, w := range waiters {
		w.Resume(v)
	}
	return nil
}

// Read returns the binding of v, following alias chains. If the variable is
// unbound, w is registered on it and a StatusSuspended result is returned;
// w is resumed once that variable resolves. A nil w only peeks.
func (s *Store) Read(v *Var, w Waiter) ReadResult {
	x := v
	for {
		st, value, err := x.peek()
		switch st {
		case StateBound:
			if next, ok := value.(*Var); ok {
				x = next
				continue
			}
			return ReadResult{Status: StatusBound, Value: value}
		case StateFailed:
			return ReadResult{Status: StatusFailed, Err: err}
		}
		if x.wait(w) {
			if w != nil {
				s.suspended.Inc()
			}
			return ReadResult{Status: StatusSuspended, Var: x}
		}
		// Resolved between peek and wait, try again.
	}
}

// Cancel removes a registration made by Read. It reports whether w was
// still waiting.
func (s *Store) Cancel(v *Var, w Waiter) bool {
	return v.cancel(w)
}

// Resolve is Read for an arbitrary value: values that are not variables
// are returned as they are.
func (s *Store) Resolve(value Value, w Waiter) ReadResult {
	if v, ok := value.(*Var); ok {
		return s.Read(v, w)
	}
	return ReadResult{Status: StatusBound, Value: value}
}

// Await blocks until v resolves or ctx is done.
func (s *Store) Await(ctx context.Context, v *Var) (Value, error) {
	for {
		cw := newChanWaiter()
		r := s.Read(v, cw)
		switch r.Status {
		case StatusBound:
			return r.Value, nil
		case StatusFailed:
			return nil, r.Err
		}
		select {
		case <-ctx.Done():
			s.Cancel(r.Var, cw)
			return nil, errors.Trace(ctx.Err())
		case <-cw.ch:
		}
	}
}

// AwaitDeep blocks until value is fully determined and returns it with every
// variable, including those in tuple slots, replaced by its binding. A
// variable reached again from its own binding is left in place.
func (s *Store) AwaitDeep(ctx context.Context, value Value) (Value, error) {
	return s.awaitDeep(ctx, value, make(map[*Var]struct{}))
}

// awaitDeep copies value. path holds the variables being copied by the
// callers.
func (s *Store) awaitDeep(ctx context.Context, value Value, path map[*Var]struct{}) (Value, error) {
	switch x := value.(type) {
	case *Var:
		if _, ok := path[x]; ok {
			return x, nil
		}
		bound, err := s.Await(ctx, x)
		if err != nil {
			return nil, err
		}
		path[x] = struct{}{}
		defer delete(path, x)
		return s.awaitDeep(ctx, bound, path)
	case *Tuple:
		slots := make([]Value, x.Len())
		for i := range slots {
			slot, err := s.awaitDeep(ctx, x.At(i), path)
			if err != nil {
				return nil, err
			}
			slots[i] = slot
		}
		return &Tuple{slots: slots}, nil
	default:
		return value, nil
	}
}

// Determined reports, without blocking, whether value and all its slots are
// bound.
func (s *Store) Determined(value Value) bool {
	return s.determined(value, make(map[*Var]struct{}))
}

func (s *Store) determined(value Value, visited map[*Var]struct{}) bool {
	switch x := value.(type) {
	case *Var:
		if _, ok := visited[x]; ok {
			return true
		}
		visited[x] = struct{}{}
		r := s.Read(x, nil)
		return r.Status == StatusBound && s.determined(r.Value, visited)
	case *Tuple:
		for i := 0; i < x.Len(); i++ {
			if !s.determined(x.At(i), visited) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// reaches reports whether following the alias chain from x arrives at v.
func reaches(x, v *Var) bool {
	for {
		if x == v {
			return true
		}
		st, value, _ := x.peek()
		if st != StateBound {
			return false
		}
		next, ok := value.(*Var)
		if !ok {
			return false
		}
		x = next
	}
}

type chanWaiter struct {
	once sync.Once
	ch   chan struct{}
}

func newChanWaiter() *chanWaiter {
	return &chanWaiter{ch: make(chan struct{})}
}

func (w *chanWaiter) Resume(*Var) {
	w.once.Do(func() { close(w.ch) })
}
