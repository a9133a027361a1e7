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

package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pingcap/actorflow/pkg/actor"
	"github.com/pingcap/actorflow/pkg/config"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/leakutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	leakutil.SetUpLeakTest(m)
}

func TestCompleteWithDefaults(t *testing.T) {
	cmd := new(cobra.Command)
	o := newOptions()
	o.addFlags(cmd)

	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, o.complete(cmd))
	require.NoError(t, o.validate())

	expected := config.GetDefaultConfig()
	require.NoError(t, expected.ValidateAndAdjust())
	require.Equal(t, expected, o.cfg)
	require.Equal(t, 1, o.rounds)
	require.NotZero(t, o.seed)
}

func TestCompleteFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actorflow.toml")
	content := `
status-addr = "127.0.0.1:8300"

[log]
level = "warn"

[scheduler]
worker-num = 3
messages-per-turn = 16
slow-step-threshold = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmd := new(cobra.Command)
	o := newOptions()
	o.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", path,
		"--worker-num", "5",
		"--log-level", "debug",
		"--rounds", "3",
		"--seed", "42",
	}))
	require.NoError(t, o.complete(cmd))
	require.NoError(t, o.validate())

	require.Equal(t, 5, o.cfg.Scheduler.WorkerNum)
	require.Equal(t, 16, o.cfg.Scheduler.MessagesPerTurn)
	require.Equal(t, config.TomlDuration(2*time.Second), o.cfg.Scheduler.SlowStepThreshold)
	require.Equal(t, "debug", o.cfg.LogConf.Level)
	require.Equal(t, "127.0.0.1:8300", o.cfg.StatusAddr)
	require.Equal(t, 3, o.rounds)
	require.Equal(t, int64(42), o.seed)
}

func TestCompleteRejectsUnknownConfigItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actorflow.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\nno-such-item = 1\n"), 0o644))

	cmd := new(cobra.Command)
	o := newOptions()
	o.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))
	err := o.complete(cmd)
	require.True(t, cerrors.ErrUnknownConfigItem.Equal(err), "%v", err)
	require.Contains(t, err.Error(), "scheduler.no-such-item")
}

func TestCompleteRejectsInvalidConfig(t *testing.T) {
	cmd := new(cobra.Command)
	o := newOptions()
	o.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--worker-num", "-1"}))
	err := o.complete(cmd)
	require.True(t, cerrors.ErrInvalidConfig.Equal(err), "%v", err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		args []string
		msg  string
	}{
		{args: []string{"--rounds", "0"}, msg: ".*rounds must be larger than 0.*"},
		{args: []string{"--keep-alive"}, msg: ".*keep-alive requires status-addr.*"},
	}
	for _, cs := range cases {
		cmd := new(cobra.Command)
		o := newOptions()
		o.addFlags(cmd)
		require.NoError(t, cmd.ParseFlags(cs.args))
		require.NoError(t, o.complete(cmd))
		err := o.validate()
		require.Error(t, err)
		require.Regexp(t, cs.msg, err.Error())
	}
}

func TestRunRoundInEveryOrder(t *testing.T) {
	sys, err := actor.NewSystem(t.Name(), nil)
	require.NoError(t, err)
	defer sys.Close()
	require.NoError(t, sys.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for i, order := range orders {
		res, err := runRound(ctx, sys, i, order)
		require.NoError(t, err)
		require.Equal(t, "7", res.Sum)
		require.Equal(t, "[1, 2, 3]", res.Tuple)
		require.Equal(t, order, res.Order)
	}
}

func TestDemoCommand(t *testing.T) {
	cmd := NewCmdDemo()
	var b bytes.Buffer
	cmd.SetOut(&b)
	cmd.SetErr(&b)
	cmd.SetArgs([]string{
		"--rounds", "4",
		"--worker-num", "2",
		"--seed", "7",
		"--json",
		"--log-level", "warn",
	})
	require.NoError(t, cmd.Execute())

	var results []roundResult
	require.NoError(t, json.Unmarshal(b.Bytes(), &results), b.String())
	require.Len(t, results, 4)
	for i, res := range results {
		require.Equal(t, i, res.Round)
		require.ElementsMatch(t, []int{0, 1, 2}, res.Order)
		require.Equal(t, "7", res.Sum)
		require.Equal(t, "[1, 2, 3]", res.Tuple)
	}
}

func TestDemoCommandWithStatusServer(t *testing.T) {
	cmd := NewCmdDemo()
	var b bytes.Buffer
	cmd.SetOut(&b)
	cmd.SetErr(&b)
	cmd.SetArgs([]string{
		"--status-addr", "127.0.0.1:0",
		"--log-level", "warn",
	})
	require.NoError(t, cmd.Execute())
	require.Contains(t, b.String(), "status server listens on 127.0.0.1:")
	require.Contains(t, b.String(), "n1 + n2*n3 = 7, [n1, n2, n3] = [1, 2, 3]")
}

func TestListensOnAllInterfaces(t *testing.T) {
	cases := []struct {
		addr     string
		expected bool
	}{
		{":8300", true},
		{"0.0.0.0:8300", true},
		{"[::]:8300", true},
		{"127.0.0.1:8300", false},
		{"localhost:8300", false},
		{"invalid", false},
	}
	for _, cs := range cases {
		require.Equal(t, cs.expected, listensOnAllInterfaces(cs.addr), cs.addr)
	}
}
