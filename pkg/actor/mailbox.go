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
	"strconv"
	"sync"

	"github.com/edwingeng/deque"
	"github.com/pingcap/actorflow/pkg/actor/message"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
)

// ID is ID for actors.
type ID uint64

func (id ID) String() string {
	return "actor-" + strconv.FormatUint(uint64(id), 10)
}

// Mailbox is an unbounded FIFO queue of messages owned by one actor.
// Enqueue is safe for concurrent senders, Dequeue is only called by the
// worker running the actor.
type Mailbox struct {
	id ID

	mu     sync.Mutex
	queue  deque.Deque
	closed bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox(id ID) *Mailbox {
	return &Mailbox{id: id, queue: deque.NewDeque()}
}

// ID returns the id of the owning actor.
func (m *Mailbox) ID() ID {
	return m.id
}

// Enqueue appends msg. It never blocks, and fails with ErrActorTerminated
// once the mailbox is closed.
func (m *Mailbox) Enqueue(msg message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return cerrors.ErrActorTerminated.GenWithStackByArgs(m.id, msg.Selector)
	}
	m.queue.PushBack(msg)
	return nil
}

// Dequeue pops the oldest message without blocking.
func (m *Mailbox) Dequeue() (message.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue.Empty() {
		return message.Message{}, false
	}
	return m.queue.PopFront().(message.Message), true
}

// Len returns the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Close rejects further messages and returns the ones never delivered.
// Closing twice returns nothing the second time.
func (m *Mailbox) Close() []message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	msgs := make([]message.Message, 0, m.queue.Len())
	for !m.queue.Empty() {
		msgs = append(msgs, m.queue.PopFront().(message.Message))
	}
	return msgs
}
