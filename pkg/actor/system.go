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

package actor

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pingcap/actorflow/pkg/config"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/eval"
	"github.com/pingcap/actorflow/pkg/logutil"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// SpawnConfig configures a spawned actor.
type SpawnConfig struct {
	// Name is used in logs and error messages only.
	Name string
	// Args are bound to the template parameters.
	Args []dataflow.Value
}

// System runs actors that share a variable store and a scheduler.
type System struct {
	id        string
	name      string
	store     *dataflow.Store
	sched     *Scheduler
	binder    *Binder
	templates *templateCache
	log       *zap.Logger

	liveActors prometheus.Gauge
	spawned    prometheus.Counter

	nextID atomic.Uint64

	mu      sync.Mutex
	procs   map[ID]*proc
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSystem creates an actor system. A nil cfg means the default config.
func NewSystem(name string, cfg *config.Config) (*System, error) {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		return nil, errors.Trace(err)
	}
	templates, err := newTemplateCache(cfg.Actor.TemplateCacheSize)
	if err != nil {
		return nil, errors.Trace(err)
	}

	id := uuid.New().String()
	logger := logutil.NewLogger4System(id).With(zap.String("name", name))
	store := dataflow.NewStore(name)
	s := &System{
		id:         id,
		name:       name,
		store:      store,
		sched:      newScheduler(name, cfg.Scheduler, clock.New(), logger),
		binder:     newBinder(name, store, logger, time.Duration(cfg.Actor.DeadLetterLogInterval)),
		templates:  templates,
		log:        logger,
		liveActors: liveActors.WithLabelValues(name),
		spawned:    spawnedCounter.WithLabelValues(name),
		procs:      make(map[ID]*proc),
	}
	return s, nil
}

// ID returns the unique id of the system.
func (s *System) ID() string {
	return s.id
}

// Name returns the name the system was created with.
func (s *System) Name() string {
	return s.name
}

// Store returns the variable store shared by the actors of the system.
func (s *System) Store() *dataflow.Store {
	return s.store
}

// NumActors returns the number of actors that are not terminated.
func (s *System) NumActors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Start starts the workers. Actors spawned before Start wait in the run
// queue. The system runs until Close is called or ctx is done.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cerrors.ErrSystemClosed.GenWithStackByArgs(s.id)
	}
	if s.started {
		return nil
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sched.run(ctx); err != nil {
			s.log.Warn("actor scheduler exited with error", zap.Error(err))
		}
	}()
	s.log.Info("actor system started", zap.Int("worker-num", s.sched.workerNum))
	return nil
}

// Close stops the workers and terminates every actor. Requests that were
// not served fail with ErrActorTerminated.
func (s *System) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	procs := make([]*proc, 0, len(s.procs))
	for _, p := range s.procs {
		procs = append(procs, p)
	}
	s.mu.Unlock()
	for _, p := range procs {
		p.terminate()
	}
	s.log.Info("actor system closed", zap.Int("terminated", len(procs)))
}

// Spawn creates a top-level actor and schedules its constructor.
func (s *System) Spawn(tmpl *Template, cfg SpawnConfig) (*Ref, error) {
	return s.spawn(tmpl, cfg, nil)
}

func (s *System) spawn(tmpl *Template, cfg SpawnConfig, parent *proc) (*Ref, error) {
	ct, err := s.templates.get(tmpl)
	if err != nil {
		return nil, err
	}
	if len(cfg.Args) != len(ct.params) {
		return nil, cerrors.ErrSpawnArgsMismatch.GenWithStackByArgs(ct.name, len(ct.params), len(cfg.Args))
	}

	env := eval.NewEnv(nil)
	for i, name := range ct.params {
		env.Define(name, cfg.Args[i])
	}
	for _, name := range ct.fields {
		env.Define(name, dataflow.Nil{})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, cerrors.ErrSystemClosed.GenWithStackByArgs(s.id)
	}
	id := ID(s.nextID.Add(1))
	p := &proc{
		id:     id,
		name:   cfg.Name,
		sys:    s,
		tmpl:   ct,
		mb:     NewMailbox(id),
		env:    env,
		log:    logutil.NewLogger4Actor(s.id, id.String()),
		state:  StateSpawned,
		comp:   eval.NewComputation(ct.ctor, env),
		inCtor: true,
	}
	p.serving.Selector = ctorSelector
	p.ref = &Ref{p: p}
	if parent != nil {
		p.parent = parent.id
	}
	s.procs[id] = p
	s.mu.Unlock()

	if parent != nil {
		parent.addChild(p.ref)
	}
	s.liveActors.Inc()
	s.spawned.Inc()
	p.log.Debug("actor spawned",
		zap.String("template", ct.name),
		zap.String("name", cfg.Name),
		zap.Uint64("parent", uint64(p.parent)))

	p.mu.Lock()
	if p.state != StateSpawned {
		// Terminated by a concurrent Close.
		p.mu.Unlock()
		return nil, cerrors.ErrSystemClosed.GenWithStackByArgs(s.id)
	}
	p.state = StateRunnable
	p.mu.Unlock()
	s.sched.schedule(p)
	return p.ref, nil
}

func (s *System) remove(p *proc) {
	s.mu.Lock()
	_, ok := s.procs[p.id]
	delete(s.procs, p.id)
	s.mu.Unlock()
	if ok {
		s.liveActors.Dec()
	}
}
