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
	"sync"

	"github.com/pingcap/actorflow/pkg/actor/message"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/eval"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// State is the lifecycle state of an actor.
type State int32

// Actor states.
//
//	Spawned -> Runnable <-> Running -> Idle | Suspended | Runnable | Terminated
//	Idle -> Runnable on a new message
//	Suspended -> Runnable when the variable it waits on resolves
const (
	StateSpawned State = iota
	StateRunnable
	StateRunning
	StateSuspended
	StateIdle
	StateTerminated
)

var stateNames = [...]string{
	StateSpawned:    "spawned",
	StateRunnable:   "runnable",
	StateRunning:    "running",
	StateSuspended:  "suspended",
	StateIdle:       "idle",
	StateTerminated: "terminated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

const ctorSelector = "init"

// proc is an actor instance. At most one worker runs a proc at a time.
type proc struct {
	id     ID
	name   string
	parent ID
	sys    *System
	tmpl   *compiledTemplate
	mb     *Mailbox
	env    *eval.Env
	ref    *Ref
	log    *zap.Logger

	mu    sync.Mutex
	state State
	// resumeRequested records a resume that arrived while Running.
	resumeRequested bool
	children        []*Ref

	// Fields below are only accessed by the worker running the proc,
	// or by System.Close once every worker has exited.
	comp          *eval.Computation
	serving       message.Message
	inCtor        bool
	stopRequested bool
}

var _ eval.Runtime = (*proc)(nil)

// deliver enqueues msg and wakes the actor if it is idle.
func (p *proc) deliver(msg message.Message) error {
	if err := p.mb.Enqueue(msg); err != nil {
		return err
	}
	p.notify()
	return nil
}

func (p *proc) notify() {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}
	p.state = StateRunnable
	p.mu.Unlock()
	p.sys.sched.schedule(p)
}

// Resume implements dataflow.Waiter.
func (p *proc) Resume(*dataflow.Var) {
	p.mu.Lock()
	switch p.state {
	case StateSuspended:
		p.state = StateRunnable
		p.mu.Unlock()
		p.sys.sched.schedule(p)
		return
	case StateRunning:
		p.resumeRequested = true
	}
	p.mu.Unlock()
}

func (p *proc) getState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// poll runs the actor until it has nothing to do, suspends, terminates or
// has completed budget handlers.
func (p *proc) poll(budget int) {
	p.mu.Lock()
	switch p.state {
	case StateTerminated:
		p.mu.Unlock()
		return
	case StateRunnable:
	default:
		state := p.state
		p.mu.Unlock()
		log.Panic("actor polled in unexpected state",
			zap.Stringer("actor", p.ref), zap.Stringer("state", state))
	}
	p.state = StateRunning
	p.resumeRequested = false
	p.mu.Unlock()

	for served := 0; ; {
		if p.comp == nil {
			if served >= budget {
				break
			}
			msg, ok := p.mb.Dequeue()
			if !ok {
				break
			}
			if msg.Tp == message.TypeStop {
				p.terminate()
				return
			}
			if !p.dispatch(msg) {
				served++
				continue
			}
		}
		outcome, err := p.step()
		if outcome == eval.Suspended {
			p.park(StateSuspended)
			return
		}
		p.complete(outcome, err)
		served++
		if p.stopRequested {
			p.terminate()
			return
		}
	}
	p.park(StateIdle)
}

// park leaves the Running state. Work that arrived meanwhile makes the actor
// Runnable again.
func (p *proc) park(next State) {
	p.mu.Lock()
	if next == StateSuspended && p.resumeRequested {
		next = StateRunnable
	}
	if next == StateIdle && p.mb.Len() > 0 {
		next = StateRunnable
	}
	p.resumeRequested = false
	p.state = next
	p.mu.Unlock()
	if next == StateRunnable {
		p.sys.sched.schedule(p)
	}
}

// dispatch starts serving msg. It returns false if no handler matches, in
// which case the message is dead-lettered.
func (p *proc) dispatch(msg message.Message) bool {
	var (
		h  Handler
		ok bool
	)
	switch msg.Tp {
	case message.TypeAsk:
		h, ok = p.tmpl.asks[msg.Selector]
	case message.TypeTell:
		h, ok = p.tmpl.tells[msg.Selector]
	}
	if !ok {
		messageCounter.WithLabelValues(p.sys.name, msg.Tp.String(), "unmatched").Inc()
		err := cerrors.ErrUnmatchedSelector.GenWithStackByArgs(p.ref, msg.Tp, msg.Selector)
		p.sys.binder.deadLetter(p.id, msg, err)
		return false
	}
	env := eval.NewEnv(p.env)
	if h.Param != "" {
		env.Define(h.Param, msg.Payload)
	}
	p.comp = eval.NewComputation(h.Body, env)
	p.serving = msg
	return true
}

// step runs the current computation. A panic fails the message being served.
func (p *proc) step() (outcome eval.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("actor handler panicked",
				zap.String("selector", p.serving.Selector),
				zap.Any("panic", r), zap.Stack("stack"))
			err = cerrors.ErrHandlerPanicked.GenWithStackByArgs(p.ref, p.serving.Selector, r)
			outcome = eval.Failed
		}
	}()
	outcome = p.comp.Run(p)
	if outcome == eval.Failed {
		err = p.comp.Err()
	}
	return outcome, err
}

// complete finishes the message being served with the computation outcome.
func (p *proc) complete(outcome eval.Outcome, err error) {
	comp, msg := p.comp, p.serving
	p.comp, p.serving = nil, message.Message{}
	if p.inCtor {
		p.inCtor = false
		if outcome == eval.Failed {
			p.log.Warn("actor constructor failed", zap.Error(err))
			p.stopRequested = true
		}
		return
	}

	result := "ok"
	if outcome == eval.Failed {
		result = "failed"
	}
	messageCounter.WithLabelValues(p.sys.name, msg.Tp.String(), result).Inc()
	switch msg.Tp {
	case message.TypeAsk:
		if outcome == eval.Failed {
			p.sys.binder.Reply(msg, nil, err)
		} else {
			p.sys.binder.Reply(msg, comp.Result(), nil)
		}
	case message.TypeTell:
		if outcome == eval.Failed {
			p.log.Warn("tell handler failed",
				zap.String("selector", msg.Selector), zap.Error(err))
		}
	}
}

// terminate closes the mailbox and dead-letters every undelivered request,
// including the one being served if the actor is stopped mid-handler.
func (p *proc) terminate() {
	p.mu.Lock()
	if p.state == StateTerminated {
		p.mu.Unlock()
		return
	}
	p.state = StateTerminated
	p.mu.Unlock()

	if p.comp != nil {
		if v := p.comp.WaitingOn(); v != nil {
			p.sys.store.Cancel(v, p)
		}
	}
	if p.comp != nil && !p.inCtor {
		p.sys.binder.deadLetter(p.id, p.serving,
			cerrors.ErrActorTerminated.GenWithStackByArgs(p.ref, p.serving.Selector))
	}
	p.comp, p.serving = nil, message.Message{}
	for _, msg := range p.mb.Close() {
		if msg.Tp == message.TypeStop {
			continue
		}
		p.sys.binder.deadLetter(p.id, msg,
			cerrors.ErrActorTerminated.GenWithStackByArgs(p.ref, msg.Selector))
	}
	p.sys.remove(p)
	p.log.Info("actor terminated")
}

func (p *proc) addChild(child *Ref) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.children = append(p.children, child)
}

// Store implements eval.Runtime.
func (p *proc) Store() *dataflow.Store {
	return p.sys.store
}

// Waiter implements eval.Runtime.
func (p *proc) Waiter() dataflow.Waiter {
	return p
}

// Self implements eval.Runtime.
func (p *proc) Self() dataflow.Value {
	return p.ref
}

// Ask implements eval.Runtime.
func (p *proc) Ask(target dataflow.Value, selector string, payload dataflow.Value) (*dataflow.Var, error) {
	return p.sys.binder.Ask(target, selector, payload, p.id)
}

// Tell implements eval.Runtime. Telling a terminated actor is not a failure
// of the sender.
func (p *proc) Tell(target dataflow.Value, selector string, payload dataflow.Value) error {
	err := p.sys.binder.Tell(target, selector, payload, p.id)
	if cerrors.IsDeadLetter(err) {
		return nil
	}
	return err
}

// Spawn implements eval.Runtime.
func (p *proc) Spawn(tmpl eval.Template, args []dataflow.Value) (dataflow.Value, error) {
	t, ok := tmpl.(*Template)
	if !ok || t == nil {
		return nil, cerrors.ErrInvalidTemplate.GenWithStackByArgs(tmpl, "not an actor template")
	}
	ref, err := p.sys.spawn(t, SpawnConfig{Args: args}, p)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// Stop implements eval.Runtime.
func (p *proc) Stop() {
	p.stopRequested = true
}

// Ref is a reference to an actor. It is a dataflow value, so it can be
// passed in messages and stored in tuples.
type Ref struct {
	p *proc
}

var _ dataflow.Value = (*Ref)(nil)

// Kind implements dataflow.Value.
func (r *Ref) Kind() dataflow.Kind {
	return dataflow.KindActor
}

func (r *Ref) String() string {
	if r.p.name != "" {
		return r.p.name + "#" + r.p.id.String()
	}
	return r.p.id.String()
}

// ID returns the id of the actor.
func (r *Ref) ID() ID {
	return r.p.id
}

// Name returns the name given at spawn, possibly empty.
func (r *Ref) Name() string {
	return r.p.name
}

// Parent returns the id of the spawning actor, zero for the host.
func (r *Ref) Parent() ID {
	return r.p.parent
}

// Ask sends a request from the host and returns its reply variable.
func (r *Ref) Ask(selector string, payload dataflow.Value) *dataflow.Var {
	// Only fails for non-actor targets.
	reply, _ := r.p.sys.binder.Ask(r, selector, payload, 0)
	return reply
}

// Tell sends a one-way message from the host.
func (r *Ref) Tell(selector string, payload dataflow.Value) error {
	return r.p.sys.binder.Tell(r, selector, payload, 0)
}

// Stop asks the actor to terminate once the messages sent before are
// served. Stopping a terminated actor does nothing. The stop request waits
// behind a handler suspended on a variable, so an actor waiting on a variable
// that is never bound only terminates when its System is closed.
func (r *Ref) Stop() {
	_ = r.p.deliver(message.StopMessage(0))
}

// State returns the current lifecycle state.
func (r *Ref) State() State {
	return r.p.getState()
}

// Children returns the actors spawned by this one.
func (r *Ref) Children() []*Ref {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return append([]*Ref(nil), r.p.children...)
}
