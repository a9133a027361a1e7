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
	"github.com/pingcap/errors"
)

// errors
var (
	// dataflow variable errors
	ErrAlreadyBound = errors.Normalize(
		"dataflow variable %s is already resolved",
		errors.RFCCodeText("AFLOW:ErrAlreadyBound"),
	)
	ErrCyclicBinding = errors.Normalize(
		"binding dataflow variable %s to %s would create an alias cycle",
		errors.RFCCodeText("AFLOW:ErrCyclicBinding"),
	)
	ErrNilValue = errors.Normalize(
		"cannot bind dataflow variable %s to a nil value",
		errors.RFCCodeText("AFLOW:ErrNilValue"),
	)

	// actor errors
	ErrUnmatchedSelector = errors.Normalize(
		"actor %s has no %s handler for selector '%s'",
		errors.RFCCodeText("AFLOW:ErrUnmatchedSelector"),
	)
	ErrActorTerminated = errors.Normalize(
		"actor %s is terminated, message '%s' is a dead letter",
		errors.RFCCodeText("AFLOW:ErrActorTerminated"),
	)
	ErrNotAnActor = errors.Normalize(
		"value %s is not an actor reference",
		errors.RFCCodeText("AFLOW:ErrNotAnActor"),
	)
	ErrInvalidTemplate = errors.Normalize(
		"invalid actor template '%s': %s",
		errors.RFCCodeText("AFLOW:ErrInvalidTemplate"),
	)
	ErrSpawnArgsMismatch = errors.Normalize(
		"actor template '%s' expects %d constructor arguments, got %d",
		errors.RFCCodeText("AFLOW:ErrSpawnArgsMismatch"),
	)
	ErrHandlerPanicked = errors.Normalize(
		"actor %s panicked while serving '%s': %v",
		errors.RFCCodeText("AFLOW:ErrHandlerPanicked"),
	)
	ErrSystemClosed = errors.Normalize(
		"actor system %s is closed",
		errors.RFCCodeText("AFLOW:ErrSystemClosed"),
	)

	// evaluation errors
	ErrTypeMismatch = errors.Normalize(
		"operator '%s' cannot be applied to %s and %s",
		errors.RFCCodeText("AFLOW:ErrTypeMismatch"),
	)
	ErrUnboundIdentifier = errors.Normalize(
		"identifier '%s' is not defined",
		errors.RFCCodeText("AFLOW:ErrUnboundIdentifier"),
	)
	ErrIndexOutOfRange = errors.Normalize(
		"index %d out of range for tuple of length %d",
		errors.RFCCodeText("AFLOW:ErrIndexOutOfRange"),
	)
	ErrDivisionByZero = errors.Normalize(
		"division by zero",
		errors.RFCCodeText("AFLOW:ErrDivisionByZero"),
	)
	ErrRaised = errors.Normalize(
		"raised: %s",
		errors.RFCCodeText("AFLOW:ErrRaised"),
	)
	ErrUnknownExpression = errors.Normalize(
		"unknown expression type %T",
		errors.RFCCodeText("AFLOW:ErrUnknownExpression"),
	)

	// config errors
	ErrInvalidConfig = errors.Normalize(
		"invalid config, %s",
		errors.RFCCodeText("AFLOW:ErrInvalidConfig"),
	)
	ErrUnknownConfigItem = errors.Normalize(
		"component %s's config file %s contained unknown configuration options: %s",
		errors.RFCCodeText("AFLOW:ErrUnknownConfigItem"),
	)
	ErrDecodeConfigFile = errors.Normalize(
		"decode config file failed",
		errors.RFCCodeText("AFLOW:ErrDecodeConfigFile"),
	)

	// cli and status server errors
	ErrInvalidServerOption = errors.Normalize(
		"invalid server option, %s",
		errors.RFCCodeText("AFLOW:ErrInvalidServerOption"),
	)
	ErrServeHTTP = errors.Normalize(
		"serve http error",
		errors.RFCCodeText("AFLOW:ErrServeHTTP"),
	)
	ErrAPIInvalidParam = errors.Normalize(
		"invalid api parameter, %s",
		errors.RFCCodeText("AFLOW:ErrAPIInvalidParam"),
	)

	// internal errors
	ErrInternalInvariant = errors.Normalize(
		"internal invariant violated, %s, please report a bug",
		errors.RFCCodeText("AFLOW:ErrInternalInvariant"),
	)
)
