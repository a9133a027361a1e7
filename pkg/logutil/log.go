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

package logutil

import (
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel      = "info"
	defaultLogMaxDays    = 7
	defaultLogMaxSize    = 512 // MB
	defaultLogMaxBackups = 0

	fieldSystemKey = "system"
	fieldActorKey  = "actor"
)

// Config serves to initialize logger
type Config struct {
	// Log level.
	// One of "debug", "info", "warn", "error", "dpanic", "panic", and "fatal".
	Level string `toml:"level" json:"level"`
	// Log filename, leave empty to disable file log.
	File string `toml:"file" json:"file"`
	// Max size for a single file, in MB.
	FileMaxSize int `toml:"max-size" json:"max-size"`
	// Max log keep days, default is never deleting.
	FileMaxDays int `toml:"max-days" json:"max-days"`
	// Maximum number of old log files to retain.
	FileMaxBackups int `toml:"max-backups" json:"max-backups"`

	// SamplingInitial and SamplingThereafter enable zap sampling when both
	// are positive.
	SamplingInitial    int `toml:"-" json:"-"`
	SamplingThereafter int `toml:"-" json:"-"`
}

// DefaultConfig returns the default log config.
func DefaultConfig() *Config {
	return &Config{
		Level:          defaultLogLevel,
		FileMaxSize:    defaultLogMaxSize,
		FileMaxDays:    defaultLogMaxDays,
		FileMaxBackups: defaultLogMaxBackups,
	}
}

// Adjust fills empty fields with default values.
func (cfg *Config) Adjust() {
	if len(cfg.Level) == 0 {
		cfg.Level = defaultLogLevel
	}
	if cfg.FileMaxSize <= 0 {
		cfg.FileMaxSize = defaultLogMaxSize
	}
	if cfg.FileMaxDays <= 0 {
		cfg.FileMaxDays = defaultLogMaxDays
	}
}

// InitLogger initializes the global pingcap logger from cfg.
func InitLogger(cfg *Config, opts ...zap.Option) error {
	pclogConfig := &log.Config{
		Level: cfg.Level,
		File: log.FileLogConfig{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSize,
			MaxDays:    cfg.FileMaxDays,
			MaxBackups: cfg.FileMaxBackups,
		},
	}
	if cfg.SamplingInitial > 0 && cfg.SamplingThereafter > 0 {
		pclogConfig.Sampling = &zap.SamplingConfig{
			Initial:    cfg.SamplingInitial,
			Thereafter: cfg.SamplingThereafter,
		}
	}

	logger, props, err := log.InitLogger(pclogConfig, opts...)
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// SetLogLevel changes the level of the global logger at runtime.
func SetLogLevel(level string) error {
	var lv zapcore.Level
	if err := lv.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return errors.Annotatef(err, "invalid log level %s", level)
	}
	log.SetLevel(lv)
	return nil
}

// ZapErrorFilter wraps zap.Error, if err is in given filters, it returns a
// zap.Error(nil) field so that expected errors are not logged as failures.
func ZapErrorFilter(err error, filters ...error) zap.Field {
	cause := errors.Cause(err)
	for _, ferr := range filters {
		if cause == ferr {
			return zap.Error(nil)
		}
	}
	return zap.Error(err)
}

// ShortError contructs a field which only records the error message without the
// verbose text (i.e. excludes the stack trace).
func ShortError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}

// NewLogger4System returns a logger carrying the actor system id.
func NewLogger4System(systemID string) *zap.Logger {
	return log.L().With(zap.String(fieldSystemKey, systemID))
}

// NewLogger4Actor returns a logger carrying both the system and the actor id.
func NewLogger4Actor(systemID string, actorID string) *zap.Logger {
	return log.L().With(
		zap.String(fieldSystemKey, systemID),
		zap.String(fieldActorKey, actorID),
	)
}
