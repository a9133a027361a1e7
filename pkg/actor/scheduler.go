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
	"github.com/edwingeng/deque"
	"github.com/pingcap/actorflow/pkg/config"
	"github.com/pingcap/failpoint"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scheduler keeps a run queue of Runnable actors and drives them with a
// fixed pool of workers.
type Scheduler struct {
	name              string
	workerNum         int
	messagesPerTurn   int
	slowStepThreshold time.Duration
	clock             clock.Clock
	log               *zap.Logger

	mu    sync.Mutex
	queue deque.Deque
	// ready wakes idle workers. A token may be spurious, workers always
	// check the queue before waiting.
	ready chan struct{}
}

func newScheduler(name string, cfg *config.SchedulerConfig, clk clock.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		name:              name,
		workerNum:         cfg.WorkerNum,
		messagesPerTurn:   cfg.MessagesPerTurn,
		slowStepThreshold: time.Duration(cfg.SlowStepThreshold),
		clock:             clk,
		log:               logger,
		queue:             deque.NewDeque(),
		ready:             make(chan struct{}, cfg.WorkerNum),
	}
}

// schedule appends a Runnable actor to the run queue.
func (s *Scheduler) schedule(p *proc) {
	s.mu.Lock()
	s.queue.PushBack(p)
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Scheduler) fetch() *proc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Empty() {
		return nil
	}
	return s.queue.PopFront().(*proc)
}

// run starts the workers and blocks until ctx is done.
func (s *Scheduler) run(ctx context.Context) error {
	totalWorkers.WithLabelValues(s.name).Set(float64(s.workerNum))
	defer totalWorkers.WithLabelValues(s.name).Set(0)

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workerNum; i++ {
		id := i
		eg.Go(func() error {
			return s.work(ctx, id)
		})
	}
	return eg.Wait()
}

func (s *Scheduler) work(ctx context.Context, id int) error {
	working := workingWorkers.WithLabelValues(s.name)
	busy := workingDuration.WithLabelValues(s.name)
	slow := slowStepCounter.WithLabelValues(s.name)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		p := s.fetch()
		if p == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-s.ready:
			}
			continue
		}

		failpoint.Inject("slowActorStep", func() {
			time.Sleep(10 * time.Millisecond)
		})
		working.Inc()
		start := s.clock.Now()
		p.poll(s.messagesPerTurn)
		elapsed := s.clock.Since(start)
		working.Dec()
		busy.Add(elapsed.Seconds())
		if elapsed > s.slowStepThreshold {
			slow.Inc()
			s.log.Warn("actor step is too slow",
				zap.Int("worker", id),
				zap.Stringer("actor", p.ref),
				zap.Duration("duration", elapsed))
		}
	}
}
