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

//go:build !windows

package queue

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// topicLock is an advisory, non-blocking exclusive lock on a per-topic
// lock file, enforcing the single-producer-per-topic-per-process rule
// from outside the index: two Env.Producer calls for the same topic
// in the same process race for this lock instead of silently
// interleaving writer state, using a sibling ".lock" file per topic.
type topicLock struct {
	f *os.File
}

func acquireTopicLock(path string) (*topicLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("queue: open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("queue: topic already has an active producer: %w", err)
	}
	return &topicLock{f: f}, nil
}

func (l *topicLock) release() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return fmt.Errorf("queue: unlock: %w", err)
	}
	return l.f.Close()
}
