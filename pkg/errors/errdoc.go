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
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pingcap/errors"
)

// AllErrors returns every normalized error defined in this package.
func AllErrors() []*errors.Error {
	return []*errors.Error{
		ErrAlreadyBound,
		ErrCyclicBinding,
		ErrNilValue,
		ErrUnmatchedSelector,
		ErrActorTerminated,
		ErrNotAnActor,
		ErrInvalidTemplate,
		ErrSpawnArgsMismatch,
		ErrHandlerPanicked,
		ErrSystemClosed,
		ErrTypeMismatch,
		ErrUnboundIdentifier,
		ErrIndexOutOfRange,
		ErrDivisionByZero,
		ErrRaised,
		ErrUnknownExpression,
		ErrInvalidConfig,
		ErrUnknownConfigItem,
		ErrDecodeConfigFile,
		ErrInvalidServerOption,
		ErrServeHTTP,
		ErrAPIInvalidParam,
		ErrInternalInvariant,
	}
}

// DocSpec is one entry of the error documentation.
type DocSpec struct {
	Code        string `toml:"-"`
	Error       string `toml:"error"`
	Description string `toml:"description"`
	Workaround  string `toml:"workaround"`
}

// GenerateErrorDoc renders errs as a TOML document keyed by RFC code. The
// description and workaround of an entry are taken from existing.
func GenerateErrorDoc(errs []*errors.Error, existing map[string]DocSpec) []byte {
	dedup := make(map[string]DocSpec, len(errs))
	for _, e := range errs {
		code := string(e.RFCCode())
		// The message template is not exported.
		message := reflect.ValueOf(e).Elem().FieldByName("message").String()
		if previous, found := dedup[code]; found && message < previous.Error {
			continue
		}
		s := DocSpec{Code: code, Error: message}
		if exist, found := existing[code]; found {
			s.Description = strings.TrimSpace(exist.Description)
			s.Workaround = strings.TrimSpace(exist.Workaround)
		}
		dedup[code] = s
	}

	sorted := make([]DocSpec, 0, len(dedup))
	for _, item := range dedup {
		sorted = append(sorted, item)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Code < sorted[j].Code
	})

	// Written by hand, the toml encoder does not keep the order of a map.
	buffer := bytes.NewBufferString("# AUTOGENERATED BY cmd/errdoc-gen\n" +
		"# YOU CAN CHANGE THE 'description'/'workaround' FIELDS IF THEM ARE IMPROPER.\n\n")
	for _, item := range sorted {
		buffer.WriteString(fmt.Sprintf("[\"%s\"]\nerror = '''\n%s\n'''\n", item.Code, item.Error))
		if item.Description != "" {
			buffer.WriteString(fmt.Sprintf("description = '''\n%s\n'''\n", item.Description))
		}
		if item.Workaround != "" {
			buffer.WriteString(fmt.Sprintf("workaround = '''\n%s\n'''\n", item.Workaround))
		}
		buffer.WriteString("\n")
	}
	return buffer.Bytes()
}
