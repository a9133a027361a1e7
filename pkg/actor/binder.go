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
	"time"

	"github.com/pingcap/actorflow/pkg/actor/message"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/logutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Binder pairs requests with their reply variables and delivers messages.
type Binder struct {
	store *dataflow.Store
	log   *zap.Logger

	deadLetterLimiter *rate.Limiter
	deadLetters       prometheus.Counter
}

func newBinder(name string, store *dataflow.Store, logger *zap.Logger, logInterval time.Duration) *Binder {
	return &Binder{
		store:             store,
		log:               logger,
		deadLetterLimiter: rate.NewLimiter(rate.Every(logInterval), 1),
		deadLetters:       deadLetterCounter.WithLabelValues(name),
	}
}

// Ask allocates a reply variable, enqueues the request and returns the
// variable without waiting. If the target is terminated the variable is
// failed with ErrActorTerminated. It only fails if target is not an actor.
func (b *Binder) Ask(target dataflow.Value, selector string, payload dataflow.Value, sender ID) (*dataflow.Var, error) {
	ref, ok := target.(*Ref)
	if !ok {
		return nil, cerrors.ErrNotAnActor.GenWithStackByArgs(target)
	}
	reply := b.store.Allocate()
	msg := message.AskMessage(selector, payload, reply, uint64(sender))
	if err := ref.p.deliver(msg); err != nil {
		b.deadLetter(ref.p.id, msg, err)
	}
	return reply, nil
}

// Tell enqueues a one-way message. A message to a terminated actor is
// dead-lettered and ErrActorTerminated is returned.
func (b *Binder) Tell(target dataflow.Value, selector string, payload dataflow.Value, sender ID) error {
	ref, ok := target.(*Ref)
	if !ok {
		return cerrors.ErrNotAnActor.GenWithStackByArgs(target)
	}
	msg := message.TellMessage(selector, payload, uint64(sender))
	if err := ref.p.deliver(msg); err != nil {
		b.deadLetter(ref.p.id, msg, err)
		return err
	}
	return nil
}

// Reply resolves the reply variable of a served request. A second reply is a
// programming defect, it is logged and otherwise ignored.
func (b *Binder) Reply(msg message.Message, value dataflow.Value, err error) {
	if msg.Reply == nil {
		return
	}
	var rerr error
	if err != nil {
		rerr = b.store.Fail(msg.Reply, err)
	} else {
		rerr = b.store.Bind(msg.Reply, value)
	}
	if rerr != nil {
		b.log.Warn("reply variable can not be resolved",
			zap.String("selector", msg.Selector),
			zap.Stringer("reply", msg.Reply),
			zap.Error(rerr))
	}
}

// deadLetter accounts for a message that will never be handled. A pending
// reply is failed with err.
func (b *Binder) deadLetter(to ID, msg message.Message, err error) {
	b.deadLetters.Inc()
	if msg.Reply != nil {
		// The reply can only be resolved already if the handler replied
		// before the actor terminated, which is fine.
		_ = b.store.Fail(msg.Reply, err)
	}
	if b.deadLetterLimiter.Allow() {
		b.log.Warn("dead letter",
			zap.Stringer("to", to),
			zap.Stringer("type", msg.Tp),
			zap.String("selector", msg.Selector),
			zap.Uint64("sender", msg.SenderID),
			logutil.ShortError(err))
	}
}
