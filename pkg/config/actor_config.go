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
	"time"

	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

// read only
var defaultActorConfig = &ActorConfig{
	TemplateCacheSize:     256,
	DeadLetterLogInterval: TomlDuration(time.Second),
}

// ActorConfig configs actor lifecycle bookkeeping.
type ActorConfig struct {
	// TemplateCacheSize is the number of compiled templates kept for reuse.
	TemplateCacheSize int `toml:"template-cache-size" json:"template-cache-size"`
	// DeadLetterLogInterval limits how often dead letters are logged.
	DeadLetterLogInterval TomlDuration `toml:"dead-letter-log-interval" json:"dead-letter-log-interval"`
}

func (c *ActorConfig) clone() *ActorConfig {
	cloned := *c
	return &cloned
}

// ValidateAndAdjust verifies that each parameter is valid.
func (c *ActorConfig) ValidateAndAdjust() error {
	if c.TemplateCacheSize == 0 {
		c.TemplateCacheSize = defaultActorConfig.TemplateCacheSize
	}
	if c.TemplateCacheSize < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs(
			"actor.template-cache-size must be larger than 0")
	}
	if c.DeadLetterLogInterval < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs(
			"actor.dead-letter-log-interval must not be negative")
	}
	if c.DeadLetterLogInterval == 0 {
		c.DeadLetterLogInterval = defaultActorConfig.DeadLetterLogInterval
	}
	return nil
}
