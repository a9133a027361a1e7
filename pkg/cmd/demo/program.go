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

package demo

import (
	"context"
	"fmt"

	"github.com/pingcap/actorflow/pkg/actor"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/eval"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const numGates = 3

// gateTemplate replies to "get" once its gate variable is bound by the host.
var gateTemplate = &actor.Template{
	Name:   "gate",
	Params: []string{"gate"},
	Asks: map[string]actor.Handler{
		"get": {Body: &eval.Await{Expr: eval.Name("gate")}},
	},
}

func askGate(i int) eval.Expr {
	return eval.AskOf(&eval.Index{Tuple: eval.Name("ns"), Index: eval.Lit(dataflow.Int(i))}, "get")
}

// calcTemplate combines the replies of three gates.
var calcTemplate = &actor.Template{
	Name: "calc",
	Asks: map[string]actor.Handler{
		"sum": {Param: "ns", Body: &eval.Let{
			Name: "n1", Value: askGate(0),
			Body: &eval.Let{
				Name: "n2", Value: askGate(1),
				Body: &eval.Let{
					Name: "n3", Value: askGate(2),
					Body: eval.Bin(eval.OpAdd, eval.Name("n1"),
						eval.Bin(eval.OpMul, eval.Name("n2"), eval.Name("n3"))),
				},
			},
		}},
		"tuple": {Param: "ns", Body: &eval.Tuple{Elems: []eval.Expr{askGate(0), askGate(1), askGate(2)}}},
	},
}

var (
	expectedSum   = dataflow.Int(7)
	expectedTuple = dataflow.NewTuple(dataflow.Int(1), dataflow.Int(2), dataflow.Int(3))
)

type roundResult struct {
	Round int    `json:"round"`
	Order []int  `json:"bind-order"`
	Sum   string `json:"sum"`
	Tuple string `json:"tuple"`
}

// runRound spawns three gates and a calc actor, asks calc for "sum" and
// "tuple", then binds the gates in order. Gate i is bound to i+1.
func runRound(ctx context.Context, sys *actor.System, round int, order []int) (*roundResult, error) {
	store := sys.Store()
	gates := make([]*dataflow.Var, numGates)
	ns := make([]dataflow.Value, numGates)
	for i := range gates {
		gates[i] = store.Allocate()
		ref, err := sys.Spawn(gateTemplate, actor.SpawnConfig{
			Name: fmt.Sprintf("n%d", i+1),
			Args: []dataflow.Value{gates[i]},
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer ref.Stop()
		ns[i] = ref
	}
	calc, err := sys.Spawn(calcTemplate, actor.SpawnConfig{Name: "calc"})
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer calc.Stop()

	payload := dataflow.NewTuple(ns...)
	sumReply := calc.Ask("sum", payload)
	tupleReply := calc.Ask("tuple", payload)
	for _, i := range order {
		if err := store.Bind(gates[i], dataflow.Int(i+1)); err != nil {
			return nil, errors.Trace(err)
		}
	}

	sum, err := store.Await(ctx, sumReply)
	if err != nil {
		return nil, errors.Trace(err)
	}
	tuple, err := store.AwaitDeep(ctx, tupleReply)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !dataflow.Equal(sum, expectedSum) || !dataflow.Equal(tuple, expectedTuple) {
		return nil, cerrors.ErrInternalInvariant.GenWithStackByArgs(
			fmt.Sprintf("round %d with order %v computed %s and %s", round, order, sum, tuple))
	}
	log.Debug("demo round finished",
		zap.Int("round", round),
		zap.Ints("order", order),
		zap.Stringer("sum", sum),
		zap.Stringer("tuple", tuple))
	return &roundResult{Round: round, Order: order, Sum: sum.String(), Tuple: tuple.String()}, nil
}
