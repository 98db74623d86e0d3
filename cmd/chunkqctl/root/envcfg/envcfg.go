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

// Package envcfg builds a queue.Env from the chunkqctl viper config,
// shared by every subcommand that needs one.
package envcfg

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"chunkq.dev/chunkq/pkg/queue"
)

// Open opens the environment rooted at viper's "root" key, applying
// the max_topics and map_size config keys, the ones that apply at the
// Env level. chunk_size and chunks_to_keep are not applied here; the
// push and pop commands read them.
func Open() (*queue.Env, error) {
	return queue.Open(viper.GetString("root"),
		queue.WithMaxTopics(uint32(viper.GetInt("max_topics"))),
		queue.WithMapSize(viper.GetInt("map_size")),
		queue.WithLogger(log.New(os.Stderr)),
	)
}
