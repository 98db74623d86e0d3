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
	"os"
	"path/filepath"
	"testing"
)

func TestEnvOpenCreatesLayout(t *testing.T) {
	root := t.TempDir()
	env, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	if env.MaxTopics() != defaultMaxTopics {
		t.Errorf("MaxTopics() = %d, want default %d", env.MaxTopics(), defaultMaxTopics)
	}
	if _, err := os.Stat(filepath.Join(root, "index.db")); err != nil {
		t.Errorf("index.db missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "chunks")); err != nil {
		t.Errorf("chunks dir missing: %v", err)
	}
}

func TestEnvWithMaxTopicsOption(t *testing.T) {
	env, err := Open(t.TempDir(), WithMaxTopics(4))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()
	if env.MaxTopics() != 4 {
		t.Errorf("MaxTopics() = %d, want 4", env.MaxTopics())
	}
}

func TestEnvTopicsDoNotShareIndexState(t *testing.T) {
	env := openTestEnv(t)

	pa, err := env.Producer("topic-a", WithChunkSize(1<<20))
	if err != nil {
		t.Fatalf("Producer a: %v", err)
	}
	defer pa.Close()
	pb, err := env.Producer("topic-b", WithChunkSize(1<<20))
	if err != nil {
		t.Fatalf("Producer b: %v", err)
	}
	defer pb.Close()

	if err := pa.PushBack([]byte("only in a")); err != nil {
		t.Fatalf("PushBack a: %v", err)
	}

	cb, err := env.Consumer("topic-b")
	if err != nil {
		t.Fatalf("Consumer b: %v", err)
	}
	defer cb.Close()

	item, err := cb.PopFront()
	if err != nil {
		t.Fatalf("PopFront b: %v", err)
	}
	if item != nil {
		t.Fatalf("topic-b saw a record pushed to topic-a: %+v", item)
	}
}
