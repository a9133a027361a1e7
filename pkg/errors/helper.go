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
	stderrors "errors"

	"github.com/pingcap/errors"
)

// WrapError generates a new error based on given `*errors.Error`, wraps the err
// as cause error.
// If given `err` is nil, returns a nil error, which a the different behavior
// against `Wrap` function in pingcap/errors.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

// IsDeadLetter returns true if the error reports a message that could not be
// delivered because its target actor is terminated.
func IsDeadLetter(err error) bool {
	return ErrActorTerminated.Equal(err)
}

var evaluationErrors = []*errors.Error{
	ErrTypeMismatch, ErrUnboundIdentifier, ErrIndexOutOfRange,
	ErrDivisionByZero, ErrRaised, ErrNotAnActor,
}

// IsEvaluationError returns true if the error was produced while reducing an
// expression, as opposed to a runtime or configuration failure.
func IsEvaluationError(err error) bool {
	for _, e := range evaluationErrors {
		if e.Equal(err) {
			return true
		}
	}
	return false
}

// RFCCode returns the RFC code text of a normalized error, or an empty string.
func RFCCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return string(e.RFCCode())
	}
	return ""
}
