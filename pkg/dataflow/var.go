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
	"sync"

	"go.uber.org/atomic"
)

// State is the binding state of a dataflow variable.
type State = int32

// Binding states. A variable leaves StateUnbound at most once.
const (
	StateUnbound State = iota
	StateBound
	StateFailed
)

// Waiter is a computation suspended on a variable. Resume is called exactly
// once per registration, after the variable is bound or failed, and must not
// block.
type Waiter interface {
	Resume(v *Var)
}

// Var is a single-assignment dataflow variable. It is also a Value which
// stands for its eventual binding.
type Var struct {
	id    uint64
	state atomic.Int32

	mu      sync.Mutex
	value   Value
	err     error
	waiters []Waiter
}

// ID returns the unique id of the variable within its store.
func (v *Var) ID() uint64 { return v.id }

// Kind implements Value.
func (v *Var) Kind() Kind { return KindVar }

func (v *Var) String() string { return "_v" + strconv.FormatUint(v.id, 10) }

// State returns the current binding state.
func (v *Var) State() State { return v.state.Load() }

// peek returns the binding without registering a waiter. The value and err
// are only meaningful when the returned state is not StateUnbound.
func (v *Var) peek() (State, Value, error) {
	switch st := v.state.Load(); st {
	case StateBound:
		return st, v.value, nil
	case StateFailed:
		return st, nil, v.err
	default:
		return st, nil, nil
	}
}

// resolve transitions the variable out of StateUnbound and returns the
// waiters that must be resumed. ok is false if it was already resolved.
func (v *Var) resolve(value Value, err error) (waiters []Waiter, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Load() != StateUnbound {
		return nil, false
	}
	if err != nil {
		v.err = err
		v.state.Store(StateFailed)
	} else {
		v.value = value
		v.state.Store(StateBound)
	}
	waiters, v.waiters = v.waiters, nil
	return waiters, true
}

// wait registers w if the variable is still unbound.
func (v *Var) wait(w Waiter) (registered bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Load() != StateUnbound {
		return false
	}
	if w != nil {
		v.waiters = append(v.waiters, w)
	}
	return true
}

func (v *Var) cancel(w Waiter) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, x := range v.waiters {
		if x == w {
			last := len(v.waiters) - 1
			v.waiters[i] = v.waiters[last]
			v.waiters[last] = nil
			v.waiters = v.waiters[:last]
			return true
		}
	}
	return false
}

// NumWaiters returns the number of readers registered on the variable.
func (v *Var) NumWaiters() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.waiters)
}
