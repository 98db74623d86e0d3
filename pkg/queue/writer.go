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
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// writer appends framed records to one chunk file at a time. It holds
// exactly one open file handle; rotation closes the old one and opens
// the next in a single step. No fsync is performed on append or on
// rotation — durability is left to the OS page cache and to Env's
// NoSync index setting (see the package doc).
type writer struct {
	dir   string
	topic string

	f       *os.File
	fileNum uint64
	lastTs  int64
}

func chunkFilename(dir, topic string, fileNum uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%016x", topic, fileNum))
}

// openWriter opens or creates the chunk file for topic at fileNum in
// append mode.
func openWriter(dir, topic string, fileNum uint64) (*writer, error) {
	f, err := os.OpenFile(chunkFilename(dir, topic, fileNum), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("queue: open chunk for write: %w", err)
	}
	return &writer{dir: dir, topic: topic, f: f, fileNum: fileNum}, nil
}

// rotate closes the current file and opens the next one. If target is
// given it is used as the new file number (recovery path: fast-forward
// past chunks already rotated by a previous process); otherwise the
// writer simply advances to fileNum+1.
func (w *writer) rotate(target ...uint64) error {
	next := w.fileNum + 1
	if len(target) > 0 {
		next = target[0]
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("queue: close chunk during rotate: %w", err)
	}
	f, err := os.OpenFile(chunkFilename(w.dir, w.topic, next), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("queue: open chunk during rotate: %w", err)
	}
	w.f = f
	w.fileNum = next
	w.lastTs = 0
	return nil
}

// append frames payload with the current wall-clock timestamp and
// writes it in a single write call.
func (w *writer) append(payload []byte) error {
	ts := time.Now().Unix()
	if ts < w.lastTs {
		return ErrClockRewind
	}
	w.lastTs = ts
	buf := encodeFrame(uint64(ts), payload)
	if _, err := w.f.Write(buf); err != nil {
		return fmt.Errorf("queue: append frame: %w", err)
	}
	return nil
}

// putBatch appends each payload sequentially and returns the resulting
// file size.
func (w *writer) putBatch(payloads [][]byte) (int64, error) {
	for _, p := range payloads {
		if err := w.append(p); err != nil {
			return 0, err
		}
	}
	return w.fileSize()
}

func (w *writer) fileSize() (int64, error) {
	fi, err := w.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("queue: stat chunk: %w", err)
	}
	return fi.Size(), nil
}

func (w *writer) fileNumber() uint64 { return w.fileNum }

func (w *writer) Close() error {
	return w.f.Close()
}
