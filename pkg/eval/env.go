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

// Env is a lexical environment. It belongs to a single actor and is never
// accessed concurrently.
type Env struct {
	parent *Env
	vars   map[string]dataflow.Value
}

// NewEnv creates an empty environment nested in parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]dataflow.Value)}
}

// Define binds name in this scope, shadowing outer bindings.
func (e *Env) Define(name string, v dataflow.Value) {
	e.vars[name] = v
}

// Lookup finds the nearest binding of name.
func (e *Env) Lookup(name string) (dataflow.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set rebinds the nearest existing binding of name.
func (e *Env) Set(name string, v dataflow.Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}
