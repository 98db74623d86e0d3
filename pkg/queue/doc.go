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

// Package queue implements a persistent, single-process, multi-topic
// FIFO message queue. Each topic is a contiguous range of append-only
// chunk files on disk plus two tables (producer and consumer) in a
// shared bbolt index that binds producer tail state, consumer read
// position, and per-chunk record counts into one transactional unit.
//
// A Producer appends framed records to the tail chunk and advances the
// producer table inside one write transaction per batch. A Consumer
// reads framed records from the head chunk, reclaims chunks beyond its
// retention window, and advances its cursor inside one write
// transaction per dequeue. Chunk rotation, on either side, is always a
// metadata-and-filesystem operation performed inside that same
// transaction.
//
// The queue guarantees strict FIFO delivery within a topic and
// crash-safe resume: a consumer's persisted (file, offset, bytesRead)
// triple is sufficient to resume exactly where it left off, without
// replaying any record. It does not guarantee durability across an OS
// crash or power loss — chunk appends are not fsynced and the index is
// opened with sync disabled, trading a narrow window of possible
// trailing-record loss for throughput. See Env for the root handle.
package queue
