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

package message

import (
	"fmt"

	"github.com/pingcap/actorflow/pkg/dataflow"
)

// Type is the type of Message
type Type int

// types of Message
const (
	TypeUnknown Type = iota
	// TypeTell is a one-way message.
	TypeTell
	// TypeAsk is a request whose result binds Reply.
	TypeAsk
	// TypeStop asks the receiving actor to terminate.
	TypeStop
)

func (t Type) String() string {
	switch t {
	case TypeTell:
		return "tell"
	case TypeAsk:
		return "ask"
	case TypeStop:
		return "stop"
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Message is a message sent to an actor. It is immutable once enqueued.
type Message struct {
	// Tp is the type of Message.
	Tp Type
	// Selector picks the handler of the receiving actor.
	Selector string
	// Payload may contain unbound variables.
	Payload dataflow.Value
	// Reply is bound to the handler result, set only for TypeAsk.
	Reply *dataflow.Var
	// SenderID is the id of the sending actor, zero for the host.
	SenderID uint64
}

// AskMessage creates a request message.
func AskMessage(selector string, payload dataflow.Value, reply *dataflow.Var, sender uint64) Message {
	return Message{
		Tp:       TypeAsk,
		Selector: selector,
		Payload:  orNil(payload),
		Reply:    reply,
		SenderID: sender,
	}
}

// TellMessage creates a one-way message.
func TellMessage(selector string, payload dataflow.Value, sender uint64) Message {
	return Message{
		Tp:       TypeTell,
		Selector: selector,
		Payload:  orNil(payload),
		SenderID: sender,
	}
}

// StopMessage creates a stop message.
func StopMessage(sender uint64) Message {
	return Message{
		Tp:       TypeStop,
		Selector: "stop",
		Payload:  dataflow.Nil{},
		SenderID: sender,
	}
}

func orNil(v dataflow.Value) dataflow.Value {
	if v == nil {
		return dataflow.Nil{}
	}
	return v
}
