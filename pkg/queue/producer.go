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
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// ProducerOption configures Env.Producer.
type ProducerOption func(*producerConfig)

type producerConfig struct {
	chunkSize       uint64
	reconcileOnOpen bool
}

// WithChunkSize sets the size threshold, in bytes, above which a
// batch triggers rotation to a new chunk. The check uses the tail
// chunk's size before the incoming batch, so a single oversized batch
// is permitted to exceed chunkSize — an entire batch always lands in
// one chunk. Default 64 MiB.
func WithChunkSize(bytes uint64) ProducerOption {
	return func(c *producerConfig) { c.chunkSize = bytes }
}

// WithReconcileOnOpen controls whether Env.Producer rescans the tail
// chunk to correct the producer table's recorded count for that chunk
// after an unclean shutdown (file and index can disagree if the
// process crashed between a batch's file append and its index
// commit). Default true.
func WithReconcileOnOpen(enabled bool) ProducerOption {
	return func(c *producerConfig) { c.reconcileOnOpen = enabled }
}

// Producer owns a writer for one topic and updates the shared index
// inside one write transaction per batch.
type Producer struct {
	env   *Env
	topic string

	producerBucket []byte
	consumerBucket []byte

	w         *writer
	chunkSize uint64
	lock      *topicLock
}

func openProducer(env *Env, topic string, opts ...ProducerOption) (*Producer, error) {
	cfg := producerConfig{
		chunkSize:       defaultChunkSize,
		reconcileOnOpen: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lock, err := acquireTopicLock(filepath.Join(env.root, fmt.Sprintf("%s.producer.lock", topic)))
	if err != nil {
		return nil, err
	}

	pBucket := producerBucketName(topic)
	cBucket := consumerBucketName(topic)
	var tailFile uint64

	err = env.db.Update(func(tx *bolt.Tx) error {
		pb, err := tx.CreateBucketIfNotExists(pBucket)
		if err != nil {
			return fmt.Errorf("queue: create producer table: %w", err)
		}
		cb, err := tx.CreateBucketIfNotExists(cBucket)
		if err != nil {
			return fmt.Errorf("queue: create consumer table: %w", err)
		}

		// Fail-if-exists lazy init: only the very first Producer opened
		// for this topic performs it, so concurrent initializers
		// converge on the same starting state.
		if cb.Get(keyFile) == nil {
			if err := cb.Put(keyFile, encodeU64(0)); err != nil {
				return err
			}
			if err := cb.Put(keyOffset, encodeU64(0)); err != nil {
				return err
			}
			if err := cb.Put(keyBytesRead, encodeU64(0)); err != nil {
				return err
			}
			if err := pb.Put(encodeU64(0), encodeU64(0)); err != nil {
				return err
			}
		}

		file, _, ok := lastProducerEntry(pb)
		if !ok {
			return invariantf(topic, "producer table empty after initialization")
		}
		tailFile = file
		return nil
	})
	if err != nil {
		lock.release()
		return nil, err
	}

	w, err := openWriter(env.chunksDir, topic, tailFile)
	if err != nil {
		lock.release()
		return nil, err
	}

	p := &Producer{
		env:            env,
		topic:          topic,
		producerBucket: pBucket,
		consumerBucket: cBucket,
		w:              w,
		chunkSize:      cfg.chunkSize,
		lock:           lock,
	}

	if cfg.reconcileOnOpen {
		if err := p.reconcileTailCount(); err != nil {
			w.Close()
			lock.release()
			return nil, err
		}
	}

	return p, nil
}

// reconcileTailCount rescans the tail chunk from byte zero and, if it
// holds more complete frames than the producer table records for it,
// corrects that entry. This recovers from the crash window between a
// batch's file append and its index commit (see PushBackBatch), so
// Lag stays exact across an unclean shutdown instead of merely
// tolerating the drift.
func (p *Producer) reconcileTailCount() error {
	r, err := openReader(p.env.chunksDir, p.topic, p.w.fileNumber())
	if err != nil {
		return err
	}
	defer r.Close()

	var actual uint64
	for {
		if _, err := r.read(); err != nil {
			break
		}
		actual++
	}

	return p.env.db.Update(func(tx *bolt.Tx) error {
		pb := tx.Bucket(p.producerBucket)
		if pb == nil {
			return invariantf(p.topic, "producer table missing during reconcile")
		}
		key := encodeU64(p.w.fileNumber())
		recorded := decodeU64(pb.Get(key))
		if actual > recorded {
			p.env.log.Debug("reconciled producer tail count after unclean shutdown",
				"topic", p.topic, "chunk", p.w.fileNumber(), "recorded", recorded, "actual", actual)
			return pb.Put(key, encodeU64(actual))
		}
		return nil
	})
}

// PushBack appends one record. Equivalent to PushBackBatch with a
// single-element batch.
func (p *Producer) PushBack(payload []byte) error {
	return p.PushBackBatch([][]byte{payload})
}

// PushBackBatch appends every payload to one chunk and records the
// batch's count in the index inside a single write transaction: either
// the commit succeeds and the index counts the whole batch, or it fails
// and the index counts none of it.
//
// Rotation is decided before the batch is written, using the tail
// chunk's size before this batch, so a Consumer never has to handle a
// batch split across two chunks. If the process crashes between the
// file append (step 5) and the index commit (step 7), the chunk file
// holds records the index does not yet account for; the next
// Env.Producer call rediscovers the tail file and, unless
// WithReconcileOnOpen(false) was set, corrects the count.
func (p *Producer) PushBackBatch(payloads [][]byte) error {
	if len(payloads) == 0 {
		return nil
	}
	return p.env.db.Update(func(tx *bolt.Tx) error {
		pb := tx.Bucket(p.producerBucket)
		if pb == nil {
			return invariantf(p.topic, "producer table missing")
		}

		tailFile, offset, ok := lastProducerEntry(pb)
		if !ok {
			return invariantf(p.topic, "producer table empty")
		}

		if p.w.fileNumber() < tailFile {
			if err := p.w.rotate(tailFile); err != nil {
				return err
			}
		}

		size, err := p.w.fileSize()
		if err != nil {
			return err
		}
		if uint64(size) > p.chunkSize {
			if err := p.w.rotate(); err != nil {
				return err
			}
			tailFile++
			offset = 0
			if err := pb.Put(encodeU64(tailFile), encodeU64(0)); err != nil {
				return err
			}
		}

		if _, err := p.w.putBatch(payloads); err != nil {
			return err
		}

		return pb.Put(encodeU64(tailFile), encodeU64(offset+uint64(len(payloads))))
	})
}

// Close closes the underlying writer and releases the topic's
// producer lock. It does not close the Env.
func (p *Producer) Close() error {
	werr := p.w.Close()
	lerr := p.lock.release()
	if werr != nil {
		return werr
	}
	return lerr
}
