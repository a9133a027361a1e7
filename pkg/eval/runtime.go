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

// Template is an opaque actor template, resolved by the Runtime on spawn.
type Template interface {
	TemplateName() string
}

// Runtime is what a computation needs from the actor executing it.
type Runtime interface {
	// Store is the variable store of the actor system.
	Store() *dataflow.Store
	// Waiter is registered on a variable when a read suspends.
	Waiter() dataflow.Waiter
	// Self returns the reference of the running actor.
	Self() dataflow.Value
	// Ask enqueues a request to target and returns its reply variable.
	Ask(target dataflow.Value, selector string, payload dataflow.Value) (*dataflow.Var, error)
	// Tell enqueues a message to target.
	Tell(target dataflow.Value, selector string, payload dataflow.Value) error
	// Spawn creates a child actor.
	Spawn(tmpl Template, args []dataflow.Value) (dataflow.Value, error)
	// Stop requests termination of the running actor.
	Stop()
}
