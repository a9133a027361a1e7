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
	"context"
	"math/rand"
	"net"
	"time"

	"github.com/fatih/color"
	"github.com/pingcap/actorflow/pkg/actor"
	"github.com/pingcap/actorflow/pkg/cmd/util"
	"github.com/pingcap/actorflow/pkg/config"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/status"
	"github.com/pingcap/actorflow/pkg/version"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const closeStatusServerTimeout = 5 * time.Second

// options defines flags for the `demo` command.
type options struct {
	configFile string
	rounds     int
	seed       int64
	jsonOutput bool
	keepAlive  bool

	// flagCfg receives flag values, which override cfg only if set.
	flagCfg *config.Config
	cfg     *config.Config
}

// newOptions creates new options for the `demo` command.
func newOptions() *options {
	return &options{
		flagCfg: config.GetDefaultConfig(),
	}
}

// addFlags receives a *cobra.Command reference and binds
// flags related to the demo to it.
func (o *options) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configFile, "config", "", "Path of the configuration file")
	cmd.Flags().StringVar(&o.flagCfg.LogConf.Level, "log-level", o.flagCfg.LogConf.Level, "log level (etc: debug|info|warn|error)")
	cmd.Flags().StringVar(&o.flagCfg.LogConf.File, "log-file", o.flagCfg.LogConf.File, "log file path")
	cmd.Flags().IntVar(&o.flagCfg.Scheduler.WorkerNum, "worker-num", o.flagCfg.Scheduler.WorkerNum, "number of scheduler workers, 0 means GOMAXPROCS")
	cmd.Flags().StringVar(&o.flagCfg.StatusAddr, "status-addr", o.flagCfg.StatusAddr, "address to serve status and metrics on, empty to disable")

	cmd.Flags().IntVar(&o.rounds, "rounds", 1, "number of rounds, each binds the gates in a random order")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "seed of the bind order, 0 means a time based seed")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "print the results in JSON format")
	cmd.Flags().BoolVar(&o.keepAlive, "keep-alive", false, "keep serving status after the demo until a signal is received")
}

// complete loads the configuration file and applies the flags set on the
// command line on top of it.
func (o *options) complete(cmd *cobra.Command) error {
	cfg := config.GetDefaultConfig()
	if len(o.configFile) > 0 {
		if err := config.StrictDecodeFile(o.configFile, "actorflow demo", cfg); err != nil {
			return err
		}
	}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "log-level":
			cfg.LogConf.Level = o.flagCfg.LogConf.Level
		case "log-file":
			cfg.LogConf.File = o.flagCfg.LogConf.File
		case "worker-num":
			cfg.Scheduler.WorkerNum = o.flagCfg.Scheduler.WorkerNum
		case "status-addr":
			cfg.StatusAddr = o.flagCfg.StatusAddr
		case "config", "rounds", "seed", "json", "keep-alive":
			// do nothing
		default:
			log.Panic("unknown flag, please report a bug", zap.String("flagName", flag.Name))
		}
	})
	if err := cfg.ValidateAndAdjust(); err != nil {
		return errors.Trace(err)
	}
	o.cfg = cfg
	if o.seed == 0 {
		o.seed = time.Now().UnixNano()
	}
	return nil
}

// validate checks that the options are consistent.
func (o *options) validate() error {
	if o.rounds <= 0 {
		return cerrors.ErrInvalidServerOption.GenWithStackByArgs("rounds must be larger than 0")
	}
	if o.keepAlive && o.cfg.StatusAddr == "" {
		return cerrors.ErrInvalidServerOption.GenWithStackByArgs("keep-alive requires status-addr")
	}
	return nil
}

func (o *options) run(cmd *cobra.Command) error {
	ctx, cancel := util.InitCmd(cmd, o.cfg.LogConf)
	defer cancel()
	version.LogVersionInfo("demo")

	sys, err := actor.NewSystem("demo", o.cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer sys.Close()
	if err := sys.Start(ctx); err != nil {
		return errors.Trace(err)
	}

	if o.cfg.StatusAddr != "" {
		srv, err := status.NewServer(o.cfg.StatusAddr, sys, newRegistry())
		if err != nil {
			return errors.Trace(err)
		}
		srv.Run()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), closeStatusServerTimeout)
			defer cancel()
			if err := srv.Close(ctx); err != nil {
				log.Warn("close status server failed", zap.Error(err))
			}
		}()
		cmd.Printf("status server listens on %s\n", srv.Addr())
		if listensOnAllInterfaces(o.cfg.StatusAddr) {
			cmd.Print(color.HiYellowString("[WARN] the status server exposes pprof and log level APIs " +
				"on every interface, consider a loopback --status-addr\n"))
		}
	}

	log.Info("demo started", zap.Int("rounds", o.rounds), zap.Int64("seed", o.seed))
	rng := rand.New(rand.NewSource(o.seed))
	results := make([]*roundResult, 0, o.rounds)
	for i := 0; i < o.rounds; i++ {
		res, err := runRound(ctx, sys, i, rng.Perm(numGates))
		if err != nil {
			return errors.Trace(err)
		}
		results = append(results, res)
	}

	if o.jsonOutput {
		if err := util.JSONPrint(cmd, results); err != nil {
			return errors.Trace(err)
		}
	} else {
		for _, res := range results {
			cmd.Printf("round %d: bind order %v, n1 + n2*n3 = %s, [n1, n2, n3] = %s\n",
				res.Round, res.Order, res.Sum, res.Tuple)
		}
	}

	if o.keepAlive {
		stop := util.InitSignalHandling(func() <-chan struct{} {
			done := make(chan struct{})
			close(done)
			return done
		}, cancel)
		defer stop()
		<-ctx.Done()
	}
	log.Info("demo exits successfully")
	return nil
}

func listensOnAllInterfaces(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsUnspecified()
}

// newRegistry returns a registry holding the runtime collectors.
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dataflow.InitMetrics(registry)
	actor.InitMetrics(registry)
	return registry
}

// NewCmdDemo creates the `demo` command.
func NewCmdDemo() *cobra.Command {
	o := newOptions()

	command := &cobra.Command{
		Use:   "demo",
		Short: "Run actors whose results do not depend on the order replies arrive in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}
			if err := o.validate(); err != nil {
				return err
			}
			return o.run(cmd)
		},
	}

	o.addFlags(command)

	return command
}
