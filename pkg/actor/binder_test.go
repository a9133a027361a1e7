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
	"errors"
	"testing"
	"time"

	"github.com/pingcap/actorflow/pkg/actor/message"
	"github.com/pingcap/actorflow/pkg/dataflow"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/log"
	"github.com/stretchr/testify/require"
)

func TestBinderRejectsNonActorTargets(t *testing.T) {
	t.Parallel()

	store := dataflow.NewStore("test")
	b := newBinder("test", store, log.L(), time.Second)
	_, err := b.Ask(dataflow.Int(1), "get", nil, 0)
	require.True(t, cerrors.ErrNotAnActor.Equal(err), err)
	err = b.Tell(dataflow.Str("x"), "inc", nil, 0)
	require.True(t, cerrors.ErrNotAnActor.Equal(err), err)
}

func TestBinderReply(t *testing.T) {
	t.Parallel()

	store := dataflow.NewStore("test")
	b := newBinder("test", store, log.L(), time.Second)

	reply := store.Allocate()
	msg := message.AskMessage("get", nil, reply, 0)
	b.Reply(msg, dataflow.Int(1), nil)
	// A second reply is ignored, the first one wins.
	b.Reply(msg, dataflow.Int(2), nil)
	b.Reply(msg, nil, errors.New("late"))
	r := store.Read(reply, nil)
	require.Equal(t, dataflow.StatusBound, r.Status)
	require.Equal(t, dataflow.Int(1), r.Value)

	failed := store.Allocate()
	boom := errors.New("boom")
	b.Reply(message.AskMessage("get", nil, failed, 0), nil, boom)
	r = store.Read(failed, nil)
	require.Equal(t, dataflow.StatusFailed, r.Status)
	require.Same(t, boom, r.Err)

	// Tells have nothing to reply to.
	b.Reply(message.TellMessage("inc", nil, 0), dataflow.Int(1), nil)
}

func TestDeadLetterFailsReply(t *testing.T) {
	t.Parallel()

	store := dataflow.NewStore("test")
	b := newBinder("test", store, log.L(), time.Hour)
	reply := store.Allocate()
	err := cerrors.ErrActorTerminated.GenWithStackByArgs(ID(1), "get")
	for i := 0; i < 3; i++ {
		// Only the first one is logged, all are failed.
		b.deadLetter(ID(1), message.AskMessage("get", nil, reply, 0), err)
	}
	r := store.Read(reply, nil)
	require.Equal(t, dataflow.StatusFailed, r.Status)
	require.True(t, cerrors.IsDeadLetter(r.Err))
}
