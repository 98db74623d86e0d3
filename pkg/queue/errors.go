/*
Copyright 2026 The Chunkq Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package queue

import (
	"errors"
	"fmt"
)

// ErrFrameExpired is returned by a Reader when a decoded frame's
// timestamp falls outside the plausibility window [now-10d, now]. A
// Consumer treats this identically to a short read: end of the live
// portion of the current chunk, try a rotation.
var ErrFrameExpired = errors.New("queue: frame timestamp outside validity window")

// ErrFrameChecksum is returned by a Reader when a decoded frame's CRC32
// does not match its header and payload bytes, indicating a torn
// append at the tail of a chunk file.
var ErrFrameChecksum = errors.New("queue: frame checksum mismatch")

// ErrClockRewind is returned by a Writer when the wall clock at append
// time is behind the last timestamp it wrote. The source data this
// queue models assumes a monotonically advancing wall clock per
// process; a rewind is treated as fatal rather than silently clamped.
var ErrClockRewind = errors.New("queue: clock moved backwards during append")

// ErrTopicNotInitialized is returned by Env.Consumer when no Producer
// has ever opened the named topic. Topic index state is created
// lazily by the first Env.Producer call for the topic; a Consumer
// cannot bootstrap it on its own.
var ErrTopicNotInitialized = errors.New("queue: topic not initialized, open a Producer first")

// InvariantError reports that a required index key was absent, or held
// an impossible value, at a point where the schema guarantees it
// should exist. It signals index corruption or a bug elsewhere in this
// package; callers should not continue operating on the topic.
type InvariantError struct {
	Topic string
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("queue: invariant violated for topic %q: %s", e.Topic, e.Msg)
}

func invariantf(topic, format string, args ...any) error {
	return &InvariantError{Topic: topic, Msg: fmt.Sprintf(format, args...)}
}
