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

// Package actor provides an actor system whose actors synchronize through
// dataflow variables. An ask returns a reply variable immediately; reading
// it before the receiver replies suspends the reader, and binding it makes
// the reader runnable again.
//
// The following diagram shows how an ask is served and how the asker is
// woken up.
//
//	,------.        ,------.    ,-------.    ,---------.    ,-----.    ,------.
//	|Asker |        |Binder|    |Mailbox|    |Scheduler|    |Actor|    |Store |
//	`--+---'        `--+---'    `---+---'    `----+----'    `--+--'    `--+---'
//	   | Ask(sel)      |            |             |            |          |
//	   |-------------->|  Allocate  |             |            |          |
//	   |               |------------------------------------------------->|
//	   |               |  Enqueue   |             |            |          |
//	   |               |----------->|             |            |          |
//	   |               |      schedule(actor) if idle          |          |
//	   |               |------------------------->|            |          |
//	   |  reply var    |            |             |            |          |
//	   |<--------------|            |             |            |          |
//	   |                Read(reply) suspends      |            |          |
//	   |------------------------------------------------------------------>|
//	   |               |            |             |  poll      |          |
//	   |               |            |             |----------->|          |
//	   |               |            |   Dequeue   |            |          |
//	   |               |            |<-------------------------|          |
//	   |               |   Reply(result)          |            |          |
//	   |               |<--------------------------------------|          |
//	   |               |   Bind(reply, result)    |            |          |
//	   |               |------------------------------------------------->|
//	   |                Resume(asker), schedule(asker)         |          |
//	   |<-----------------------------------------------------------------|
//	,--+---.        ,--+---.    ,---+---.    ,----+----.    ,--+--.    ,--+---.
//	|Asker |        |Binder|    |Mailbox|    |Scheduler|    |Actor|    |Store |
//	`------'        `------'    `-------'    `---------'    `-----'    `------'
//
// A suspended actor keeps its computation as an explicit continuation, it
// does not hold a worker while it waits. It serves no other message until
// the computation completes, so handlers of one actor never interleave.
package actor
