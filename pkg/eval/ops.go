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
	"math"

	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

// apply evaluates a non-equality binary operator on resolved operands.
// Mixing int and float promotes to float.
func apply(op Op, l, r dataflow.Value) (dataflow.Value, error) {
	switch x := l.(type) {
	case dataflow.Int:
		switch y := r.(type) {
		case dataflow.Int:
			return intOp(op, x, y)
		case dataflow.Float:
			return floatOp(op, dataflow.Float(x), y)
		}
	case dataflow.Float:
		switch y := r.(type) {
		case dataflow.Int:
			return floatOp(op, x, dataflow.Float(y))
		case dataflow.Float:
			return floatOp(op, x, y)
		}
	case dataflow.Str:
		if y, ok := r.(dataflow.Str); ok {
			return strOp(op, x, y)
		}
	}
	return nil, mismatch(op, l, r)
}

func intOp(op Op, x, y dataflow.Int) (dataflow.Value, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv, OpMod:
		if y == 0 {
			return nil, cerrors.ErrDivisionByZero.GenWithStackByArgs()
		}
		if x == math.MinInt64 && y == -1 {
			// Go panics on this overflow, wrap like the other operators.
			if op == OpDiv {
				return x, nil
			}
			return dataflow.Int(0), nil
		}
		if op == OpDiv {
			return x / y, nil
		}
		return x % y, nil
	}
	return compare(op, x, y)
}

func floatOp(op Op, x, y dataflow.Float) (dataflow.Value, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			return nil, cerrors.ErrDivisionByZero.GenWithStackByArgs()
		}
		return x / y, nil
	case OpMod:
		return nil, mismatch(op, x, y)
	}
	return compare(op, x, y)
}

func strOp(op Op, x, y dataflow.Str) (dataflow.Value, error) {
	if op == OpAdd {
		return x + y, nil
	}
	if op == OpSub || op == OpMul || op == OpDiv || op == OpMod {
		return nil, mismatch(op, x, y)
	}
	return compare(op, x, y)
}

type ordered interface {
	dataflow.Int | dataflow.Float | dataflow.Str
	dataflow.Value
}

func compare[T ordered](op Op, x, y T) (dataflow.Value, error) {
	switch op {
	case OpLt:
		return dataflow.Bool(x < y), nil
	case OpLe:
		return dataflow.Bool(x <= y), nil
	case OpGt:
		return dataflow.Bool(x > y), nil
	case OpGe:
		return dataflow.Bool(x >= y), nil
	}
	return nil, mismatch(op, x, y)
}

func mismatch(op Op, l, r dataflow.Value) error {
	return cerrors.ErrTypeMismatch.GenWithStackByArgs(string(op), l.Kind(), r.Kind())
}
