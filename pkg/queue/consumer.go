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
	"sync/atomic"

	bolt "go.etcd.io/bbolt"
)

// ConsumerOption configures Env.Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	chunksToKeep uint64
}

// WithChunksToKeep sets the retention window: at steady state, at most
// chunksToKeep+1 chunk files exist on disk for the topic. Chunks older
// than the window are reclaimed — and their unread records discarded
// — the next time the consumer reads or checks retention. Default 8.
func WithChunksToKeep(n uint64) ConsumerOption {
	return func(c *consumerConfig) { c.chunksToKeep = n }
}

// Consumer dequeues records in order for one topic, advances its
// cursor durably on every call, and reclaims chunks beyond its
// retention window.
type Consumer struct {
	env   *Env
	topic string

	producerBucket []byte
	consumerBucket []byte

	r            *reader
	chunksToKeep uint64

	retentionDrops atomic.Uint64
}

func openConsumer(env *Env, topic string, opts ...ConsumerOption) (*Consumer, error) {
	cfg := consumerConfig{chunksToKeep: defaultChunksToKeep}
	for _, opt := range opts {
		opt(&cfg)
	}

	pBucket := producerBucketName(topic)
	cBucket := consumerBucketName(topic)

	var fileNum, bytesRead uint64
	err := env.db.Update(func(tx *bolt.Tx) error {
		cb := tx.Bucket(cBucket)
		if cb == nil {
			return ErrTopicNotInitialized
		}
		var err error
		if fileNum, err = getU64(cb, keyFile, topic, "consumer"); err != nil {
			return err
		}
		if bytesRead, err = getU64(cb, keyBytesRead, topic, "consumer"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r, err := openReader(env.chunksDir, topic, fileNum)
	if err != nil {
		return nil, err
	}
	if bytesRead > 0 {
		if err := r.setBytesRead(int64(bytesRead)); err != nil {
			r.Close()
			return nil, err
		}
	}

	return &Consumer{
		env:            env,
		topic:          topic,
		producerBucket: pBucket,
		consumerBucket: cBucket,
		r:              r,
		chunksToKeep:   cfg.chunksToKeep,
	}, nil
}

// rotationReason distinguishes a retention-driven reclaim (which is
// logged and counted, since it discards unread data) from an
// end-of-chunk advance in the normal read path (which is not).
type rotationReason int

const (
	reasonEndOfChunk rotationReason = iota
	reasonRetention
)

// rotateToNextChunk advances past the current head chunk if a newer
// one exists: it deletes the head chunk file, removes its
// producer-table entry, and resets the consumer cursor to the start
// of the next chunk. It reports false (and does nothing) if the head
// chunk is also the tail.
func (c *Consumer) rotateToNextChunk(tx *bolt.Tx, reason rotationReason) (bool, error) {
	cb := tx.Bucket(c.consumerBucket)
	pb := tx.Bucket(c.producerBucket)
	if cb == nil || pb == nil {
		return false, invariantf(c.topic, "index tables missing during rotate")
	}

	head, err := getU64(cb, keyFile, c.topic, "consumer")
	if err != nil {
		return false, err
	}
	tail, _, ok := lastProducerEntry(pb)
	if !ok {
		return false, invariantf(c.topic, "producer table empty during rotate")
	}
	if tail <= head {
		return false, nil
	}

	if reason == reasonRetention {
		headCount := decodeU64(pb.Get(encodeU64(head)))
		headOffset, err := getU64(cb, keyOffset, c.topic, "consumer")
		if err != nil {
			return false, err
		}
		dropped := headCount - headOffset
		c.retentionDrops.Add(dropped)
		c.env.log.Warn("chunk retention discarded unread records",
			"topic", c.topic, "chunk", head, "dropped", dropped)
	}

	if err := c.r.rotate(); err != nil {
		return false, err
	}
	if err := pb.Delete(encodeU64(head)); err != nil {
		return false, err
	}
	if err := cb.Put(keyFile, encodeU64(head+1)); err != nil {
		return false, err
	}
	if err := cb.Put(keyOffset, encodeU64(0)); err != nil {
		return false, err
	}
	if err := cb.Put(keyBytesRead, encodeU64(0)); err != nil {
		return false, err
	}
	return true, nil
}

// checkChunksToKeep reclaims every chunk older than the retention
// window. It runs before the read loop in the same transaction, so
// the consumer's current chunk is guaranteed to exist on disk by the
// time reads begin.
func (c *Consumer) checkChunksToKeep(tx *bolt.Tx) error {
	cb := tx.Bucket(c.consumerBucket)
	pb := tx.Bucket(c.producerBucket)
	if cb == nil || pb == nil {
		return invariantf(c.topic, "index tables missing during retention check")
	}
	head, err := getU64(cb, keyFile, c.topic, "consumer")
	if err != nil {
		return err
	}
	tail, _, ok := lastProducerEntry(pb)
	if !ok {
		return invariantf(c.topic, "producer table empty during retention check")
	}

	toRemove := int64(tail) + 1 - int64(head) - int64(c.chunksToKeep)
	for i := int64(0); i < toRemove; i++ {
		if _, err := c.rotateToNextChunk(tx, reasonRetention); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) incOffset(tx *bolt.Tx, delta uint64) error {
	cb := tx.Bucket(c.consumerBucket)
	offset, err := getU64(cb, keyOffset, c.topic, "consumer")
	if err != nil {
		return err
	}
	if err := cb.Put(keyOffset, encodeU64(offset+delta)); err != nil {
		return err
	}
	return cb.Put(keyBytesRead, encodeU64(uint64(c.r.getBytesRead())))
}

// PopFrontN returns up to n items. It begins by reclaiming any chunks
// beyond the retention window, then reads up to n records, rotating to
// the next chunk whenever the current one is exhausted. If rotation
// advances but the immediately following read from the new chunk also
// fails, that error aborts the whole call (and with it the
// transaction) rather than silently returning a short result — the
// same behavior as the source this design is drawn from.
func (c *Consumer) PopFrontN(n int) ([]Item, error) {
	var items []Item
	err := c.env.db.Update(func(tx *bolt.Tx) error {
		if err := c.checkChunksToKeep(tx); err != nil {
			return err
		}

		var delta uint64
		for i := 0; i < n; i++ {
			item, err := c.r.read()
			if err == nil {
				items = append(items, item)
				delta++
				continue
			}

			advanced, rerr := c.rotateToNextChunk(tx, reasonEndOfChunk)
			if rerr != nil {
				return rerr
			}
			if !advanced {
				break
			}
			item, err = c.r.read()
			if err != nil {
				return err
			}
			items = append(items, item)
			delta = 1
		}

		return c.incOffset(tx, delta)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PopFront dequeues a single record, or returns nil if the topic has
// no more records within the retention window.
func (c *Consumer) PopFront() (*Item, error) {
	items, err := c.PopFrontN(1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Lag returns the total record count across every live chunk minus the
// consumer's offset into its current chunk. It is exact when no
// producer or consumer commit races it; called concurrently with
// either, it is a monotonic but not strictly accurate snapshot.
func (c *Consumer) Lag() (uint64, error) {
	var lag uint64
	err := c.env.db.View(func(tx *bolt.Tx) error {
		pb := tx.Bucket(c.producerBucket)
		cb := tx.Bucket(c.consumerBucket)
		if pb == nil || cb == nil {
			return invariantf(c.topic, "index tables missing during lag")
		}
		total := sumProducerCounts(pb)
		offset, err := getU64(cb, keyOffset, c.topic, "consumer")
		if err != nil {
			return err
		}
		lag = total - offset
		return nil
	})
	return lag, err
}

// RetentionDrops returns the total number of records discarded by
// retention reclaiming a chunk before this consumer read it.
func (c *Consumer) RetentionDrops() uint64 {
	return c.retentionDrops.Load()
}

// Close closes the underlying reader. It does not close the Env.
func (c *Consumer) Close() error {
	return c.r.Close()
}
