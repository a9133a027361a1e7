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

package errors

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	t.Parallel()

	var (
		rfcError  = ErrDecodeConfigFile
		err       = errors.New("test")
		testCases = []struct {
			err      error
			isNil    bool
			expected string
			args     []interface{}
		}{
			{nil, true, "", []interface{}{}},
			{err, false, "[AFLOW:ErrDecodeConfigFile]decode config file failed: test", []interface{}{}},
		}
	)
	for _, tc := range testCases {
		we := WrapError(rfcError, tc.err, tc.args...)
		if tc.isNil {
			require.Nil(t, we)
		} else {
			require.NotNil(t, we)
			require.Equal(t, tc.expected, we.Error())
		}
	}
}

func TestIsDeadLetter(t *testing.T) {
	t.Parallel()

	require.True(t, IsDeadLetter(ErrActorTerminated.GenWithStackByArgs("actor-1", "get")))
	require.True(t, IsDeadLetter(errors.Trace(ErrActorTerminated.FastGenByArgs("actor-1", "get"))))
	require.False(t, IsDeadLetter(ErrSystemClosed.GenWithStackByArgs("sys")))
	require.False(t, IsDeadLetter(errors.New("other")))
}

func TestIsEvaluationError(t *testing.T) {
	t.Parallel()

	require.True(t, IsEvaluationError(ErrDivisionByZero.GenWithStackByArgs()))
	require.True(t, IsEvaluationError(ErrRaised.GenWithStackByArgs("boom")))
	require.False(t, IsEvaluationError(ErrAlreadyBound.GenWithStackByArgs("_v1")))
}

func TestRFCCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "AFLOW:ErrAlreadyBound", RFCCode(ErrAlreadyBound.GenWithStackByArgs("_v1")))
	require.Equal(t, "", RFCCode(errors.New("plain")))
}
