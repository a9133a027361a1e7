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
	"runtime"
	"time"

	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

const maxWorkerNum = 1024

// read only
var defaultSchedulerConfig = &SchedulerConfig{
	WorkerNum:         0, // runtime.GOMAXPROCS(0)
	MessagesPerTurn:   64,
	SlowStepThreshold: TomlDuration(time.Second),
}

// SchedulerConfig configs the worker pool that drives actors.
type SchedulerConfig struct {
	// WorkerNum is the number of worker goroutines. Zero means GOMAXPROCS.
	WorkerNum int `toml:"worker-num" json:"worker-num"`
	// MessagesPerTurn bounds how many handlers an actor may complete before
	// it yields its worker to other runnable actors.
	MessagesPerTurn int `toml:"messages-per-turn" json:"messages-per-turn"`
	// SlowStepThreshold is the step duration above which a warning is logged.
	SlowStepThreshold TomlDuration `toml:"slow-step-threshold" json:"slow-step-threshold"`
}

func (c *SchedulerConfig) clone() *SchedulerConfig {
	cloned := *c
	return &cloned
}

// ValidateAndAdjust verifies that each parameter is valid.
func (c *SchedulerConfig) ValidateAndAdjust() error {
	if c.WorkerNum == 0 {
		c.WorkerNum = runtime.GOMAXPROCS(0)
	}
	if c.WorkerNum < 0 || c.WorkerNum > maxWorkerNum {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs(
			"scheduler.worker-num must be in [1, 1024]")
	}
	if c.MessagesPerTurn == 0 {
		c.MessagesPerTurn = defaultSchedulerConfig.MessagesPerTurn
	}
	if c.MessagesPerTurn < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs(
			"scheduler.messages-per-turn must be larger than 0")
	}
	if c.SlowStepThreshold < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs(
			"scheduler.slow-step-threshold must not be negative")
	}
	if c.SlowStepThreshold == 0 {
		c.SlowStepThreshold = defaultSchedulerConfig.SlowStepThreshold
	}
	return nil
}
