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
	"bytes"
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/actorflow/pkg/logutil"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var defaultConfig = &Config{
	LogConf:    logutil.DefaultConfig(),
	StatusAddr: "",
	Scheduler:  defaultSchedulerConfig,
	Actor:      defaultActorConfig,
}

// Config is the configuration of an actor system and the process hosting it.
type Config struct {
	LogConf *logutil.Config `toml:"log" json:"log"`

	// StatusAddr is the address metrics are served on, empty to disable.
	StatusAddr string `toml:"status-addr" json:"status-addr"`

	Scheduler *SchedulerConfig `toml:"scheduler" json:"scheduler"`
	Actor     *ActorConfig     `toml:"actor" json:"actor"`
}

// GetDefaultConfig returns a copy of the default configuration.
func GetDefaultConfig() *Config {
	return defaultConfig.Clone()
}

// Clone clones the config.
func (c *Config) Clone() *Config {
	str, err := c.Marshal()
	if err != nil {
		log.Panic("failed to marshal config", zap.Error(err))
	}
	cloned := new(Config)
	if err := cloned.Unmarshal([]byte(str)); err != nil {
		log.Panic("failed to unmarshal config", zap.Error(err))
	}
	return cloned
}

// Marshal returns the json marshal format of a Config.
func (c *Config) Marshal() (string, error) {
	cfg, err := json.Marshal(c)
	if err != nil {
		return "", errors.Annotatef(err, "marshal config: %v", c)
	}
	return string(cfg), nil
}

// Unmarshal unmarshals into *Config from json marshal byte slice.
func (c *Config) Unmarshal(data []byte) error {
	return errors.Trace(json.Unmarshal(data, c))
}

// String implements the fmt.Stringer interface.
func (c *Config) String() string {
	s, err := c.Marshal()
	if err != nil {
		log.Error("marshal config", zap.Error(err))
	}
	return s
}

// Toml returns TOML format representation of config.
func (c *Config) Toml() (string, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", errors.Trace(err)
	}
	return b.String(), nil
}

// ValidateAndAdjust validates the config and fills missing sections with
// defaults. Every invalid item is reported, not only the first one.
func (c *Config) ValidateAndAdjust() error {
	if c.LogConf == nil {
		c.LogConf = logutil.DefaultConfig()
	}
	c.LogConf.Adjust()
	if c.Scheduler == nil {
		c.Scheduler = defaultSchedulerConfig.clone()
	}
	if c.Actor == nil {
		c.Actor = defaultActorConfig.clone()
	}

	var err error
	err = multierr.Append(err, c.Scheduler.ValidateAndAdjust())
	err = multierr.Append(err, c.Actor.ValidateAndAdjust())
	return err
}
