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
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
)

const (
	defaultMaxTopics    = 256
	defaultMapSize      = 256 << 20 // 256 MiB
	defaultChunkSize    = 64 << 20  // 64 MiB
	defaultChunksToKeep = 8
)

// Env is the root of one queue directory: a shared bbolt index plus a
// dedicated subdirectory for every topic's chunk files. Producer and
// Consumer handles are obtained only through Env's methods and never
// outlive it; Env owns the index handle, which Close releases once
// every topic handle obtained from it has been closed.
type Env struct {
	root      string
	chunksDir string
	db        *bolt.DB
	log       *log.Logger

	maxTopics uint32 // recorded for interface parity; see Open doc
}

// EnvOption configures Open.
type EnvOption func(*envConfig)

type envConfig struct {
	maxTopics uint32
	mapSize   int
	noSync    bool
	logger    *log.Logger
}

// WithMaxTopics records the expected number of distinct topics. bbolt
// has no bucket-count ceiling (unlike the LMDB-style environment this
// design is modeled on, which must preallocate named databases up
// front), so this is accepted for interface parity and surfaced via
// Env.MaxTopics, but never enforced.
func WithMaxTopics(n uint32) EnvOption {
	return func(c *envConfig) { c.maxTopics = n }
}

// WithMapSize sets bbolt's initial mmap size in bytes.
func WithMapSize(bytes int) EnvOption {
	return func(c *envConfig) { c.mapSize = bytes }
}

// WithNoSync controls whether the index database fsyncs on commit.
// Default true: no data loss after a clean process exit, possible
// trailing-record loss after an OS crash or power failure. This
// mirrors the tradeoff chunk files already make by never calling
// fsync on append.
func WithNoSync(noSync bool) EnvOption {
	return func(c *envConfig) { c.noSync = noSync }
}

// WithLogger sets the logger used for diagnostic and retention-metric
// output. A nil logger (the default) discards all output.
func WithLogger(l *log.Logger) EnvOption {
	return func(c *envConfig) { c.logger = l }
}

// Open creates or opens the environment rooted at root. Chunk files
// live under root/chunks/, named "<topic>-<16 hex digit chunk
// number>"; the index lives at root/index.db. Keeping chunk files in a
// dedicated subdirectory (rather than beside the index file, as the
// design this is modeled on does) means a topic name can never
// collide with an index filename.
func Open(root string, opts ...EnvOption) (*Env, error) {
	cfg := envConfig{
		maxTopics: defaultMaxTopics,
		mapSize:   defaultMapSize,
		noSync:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("queue: create root %q: %w", root, err)
	}
	chunksDir := filepath.Join(root, "chunks")
	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		return nil, fmt.Errorf("queue: create chunks dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(root, "index.db"), 0600, &bolt.Options{
		Timeout:         time.Second,
		NoSync:          cfg.noSync,
		InitialMmapSize: cfg.mapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: open index: %w", err)
	}

	return &Env{
		root:      root,
		chunksDir: chunksDir,
		db:        db,
		log:       logger,
		maxTopics: cfg.maxTopics,
	}, nil
}

// MaxTopics returns the value passed to WithMaxTopics (or the
// default). It is informational only; see WithMaxTopics.
func (e *Env) MaxTopics() uint32 { return e.maxTopics }

// Close closes the index handle. It does not close any Producer or
// Consumer still open on this Env; callers should close those first.
func (e *Env) Close() error {
	return e.db.Close()
}

// Producer opens (creating on first use) a Producer for topic.
func (e *Env) Producer(topic string, opts ...ProducerOption) (*Producer, error) {
	if err := validateTopicName(topic); err != nil {
		return nil, err
	}
	return openProducer(e, topic, opts...)
}

// Consumer opens a Consumer for topic. The topic must already have
// been initialized by a Producer; see ErrTopicNotInitialized.
func (e *Env) Consumer(topic string, opts ...ConsumerOption) (*Consumer, error) {
	if err := validateTopicName(topic); err != nil {
		return nil, err
	}
	return openConsumer(e, topic, opts...)
}

// validateTopicName enforces that a topic name is safe to embed in a
// chunk filename: non-empty, no path separators, no NUL.
func validateTopicName(name string) error {
	if name == "" {
		return fmt.Errorf("queue: topic name must not be empty")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("queue: topic name %q is not filesystem-safe", name)
	}
	return nil
}
