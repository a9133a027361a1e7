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

package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

// StrictDecodeFile decodes the toml file strictly. If any item in confFile file is not mapped
// into the Config struct, issue an error and stop the server from starting.
func StrictDecodeFile(path, component string, cfg interface{}) error {
	metaData, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return cerrors.WrapError(cerrors.ErrDecodeConfigFile, err)
	}
	return checkUndecodedItems(metaData, path, component)
}

// StrictDecode is StrictDecodeFile for in-memory TOML data.
func StrictDecode(data, component string, cfg interface{}) error {
	metaData, err := toml.Decode(data, cfg)
	if err != nil {
		return cerrors.WrapError(cerrors.ErrDecodeConfigFile, err)
	}
	return checkUndecodedItems(metaData, "<memory>", component)
}

func checkUndecodedItems(metaData toml.MetaData, path, component string) error {
	undecoded := metaData.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	items := make([]string, 0, len(undecoded))
	for _, item := range undecoded {
		items = append(items, item.String())
	}
	return cerrors.ErrUnknownConfigItem.GenWithStackByArgs(
		component, path, strings.Join(items, ", "))
}
