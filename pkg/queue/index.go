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
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Consumer-table keys: global key constants rather than ad hoc
// literals scattered through the code.
var (
	keyFile      = []byte("FILE")
	keyOffset    = []byte("OFFSET")
	keyBytesRead = []byte("BYTES_READ")
)

func producerBucketName(topic string) []byte {
	return []byte(fmt.Sprintf("%s_producer", topic))
}

func consumerBucketName(topic string) []byte {
	return []byte(fmt.Sprintf("%s_consumer", topic))
}

func encodeU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeU64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// lastProducerEntry returns the highest key in the producer bucket —
// the tail chunk — and its record count. This is the "read the
// largest key present" primitive the design leans on throughout;
// bbolt's cursor gives it directly via Last.
func lastProducerEntry(b *bolt.Bucket) (fileNum, count uint64, ok bool) {
	k, v := b.Cursor().Last()
	if k == nil {
		return 0, 0, false
	}
	return decodeU64(k), decodeU64(v), true
}

// getU64 reads a fixed key expected to always be present once a topic
// is initialized. Its absence is an invariant violation, not a normal
// not-found case.
func getU64(b *bolt.Bucket, key []byte, topic, what string) (uint64, error) {
	v := b.Get(key)
	if v == nil {
		return 0, invariantf(topic, "%s key %q missing from consumer table", what, key)
	}
	return decodeU64(v), nil
}

// sumProducerCounts totals every live chunk's recorded count. Used by
// lag(); exact only when called inside a transaction that is not
// racing a concurrent producer or consumer commit (see Consumer.Lag).
func sumProducerCounts(b *bolt.Bucket) uint64 {
	var total uint64
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		total += decodeU64(v)
	}
	return total
}
