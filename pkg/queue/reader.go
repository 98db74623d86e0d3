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
	"io"
	"os"
	"time"
)

// reader sequentially decodes framed records from one chunk file, with
// byte-accurate resume via bytesRead.
type reader struct {
	dir   string
	topic string

	f         *os.File
	fileNum   uint64
	bytesRead int64
}

// openReader opens the chunk file for topic at fileNum read-only.
func openReader(dir, topic string, fileNum uint64) (*reader, error) {
	f, err := os.Open(chunkFilename(dir, topic, fileNum))
	if err != nil {
		return nil, fmt.Errorf("queue: open chunk for read: %w", err)
	}
	return &reader{dir: dir, topic: topic, f: f, fileNum: fileNum}, nil
}

// read decodes exactly one frame, validates its timestamp and
// checksum, and advances bytesRead past it. Any failure — short read,
// a length that runs past EOF, an implausible timestamp, or a
// checksum mismatch — is returned as an error and leaves bytesRead
// unchanged; the caller (Consumer) treats this uniformly as "no more
// readable records in this chunk" and attempts a rotation.
func (r *reader) read() (Item, error) {
	head := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r.f, head); err != nil {
		return Item{}, err
	}
	length, ts := decodeHeader(head)

	now := time.Now().Unix()
	if int64(ts) > now || int64(ts) < now-frameValidityWindowSecs {
		return Item{}, ErrFrameExpired
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.f, payload); err != nil {
		return Item{}, err
	}

	crcBuf := make([]byte, frameChecksumSize)
	if _, err := io.ReadFull(r.f, crcBuf); err != nil {
		return Item{}, err
	}
	want := uint32(crcBuf[0]) | uint32(crcBuf[1])<<8 | uint32(crcBuf[2])<<16 | uint32(crcBuf[3])<<24
	if !verifyChecksum(head, payload, want) {
		return Item{}, ErrFrameChecksum
	}

	r.bytesRead += int64(frameHeaderSize + int(length) + frameChecksumSize)
	return Item{Ts: ts, Data: payload}, nil
}

// rotate physically deletes the current chunk file, advances to the
// next file number, and reopens. The caller is responsible for
// removing the corresponding producer-table entry in the same index
// transaction.
func (r *reader) rotate() error {
	name := chunkFilename(r.dir, r.topic, r.fileNum)
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("queue: close chunk during rotate: %w", err)
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("queue: remove chunk during rotate: %w", err)
	}
	r.fileNum++
	f, err := os.Open(chunkFilename(r.dir, r.topic, r.fileNum))
	if err != nil {
		return fmt.Errorf("queue: open chunk during rotate: %w", err)
	}
	r.f = f
	r.bytesRead = 0
	return nil
}

func (r *reader) getBytesRead() int64 { return r.bytesRead }

// setBytesRead seeks to n, used at startup to resume exactly where a
// previous consumer left off without replaying any record.
func (r *reader) setBytesRead(n int64) error {
	if _, err := r.f.Seek(n, io.SeekStart); err != nil {
		return fmt.Errorf("queue: seek chunk to resume: %w", err)
	}
	r.bytesRead = n
	return nil
}

func (r *reader) Close() error {
	return r.f.Close()
}
