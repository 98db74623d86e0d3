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

// Package queuetest holds a reusable exerciser for an open Env: a
// concrete test file builds an Env however it likes and hands it to
// Exercise.
package queuetest

import (
	"fmt"
	"testing"

	"chunkq.dev/chunkq/pkg/queue"
)

// Exercise drives a basic single-producer/single-consumer round trip
// against env under topic, and fails t if the messages do not come
// back out in FIFO order with an exact lag of zero.
func Exercise(t *testing.T, env *queue.Env, topic string, n int) {
	t.Helper()

	p, err := env.Producer(topic, queue.WithChunkSize(1<<20))
	if err != nil {
		t.Fatalf("Producer: %v", err)
	}
	defer p.Close()

	want := make([][]byte, n)
	for i := 0; i < n; i++ {
		want[i] = []byte(fmt.Sprintf("msg-%d", i))
		if err := p.PushBack(want[i]); err != nil {
			t.Fatalf("PushBack(%d): %v", i, err)
		}
	}

	c, err := env.Consumer(topic)
	if err != nil {
		t.Fatalf("Consumer: %v", err)
	}
	defer c.Close()

	for i := 0; i < n; i++ {
		item, err := c.PopFront()
		if err != nil {
			t.Fatalf("PopFront(%d): %v", i, err)
		}
		if item == nil {
			t.Fatalf("PopFront(%d): got no item, want %q", i, want[i])
		}
		if string(item.Data) != string(want[i]) {
			t.Fatalf("PopFront(%d) = %q, want %q", i, item.Data, want[i])
		}
	}

	extra, err := c.PopFront()
	if err != nil {
		t.Fatalf("final PopFront: %v", err)
	}
	if extra != nil {
		t.Fatalf("final PopFront = %q, want nil", extra.Data)
	}

	lag, err := c.Lag()
	if err != nil {
		t.Fatalf("Lag: %v", err)
	}
	if lag != 0 {
		t.Fatalf("Lag = %d, want 0", lag)
	}
}
