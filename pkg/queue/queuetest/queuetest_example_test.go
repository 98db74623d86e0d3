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

package queuetest_test

import (
	"testing"

	"chunkq.dev/chunkq/pkg/queue"
	"chunkq.dev/chunkq/pkg/queue/queuetest"
)

func TestExerciseMultipleTopics(t *testing.T) {
	env, err := queue.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	queuetest.Exercise(t, env, "topic-a", 10)
	queuetest.Exercise(t, env, "topic-b", 200)
}
