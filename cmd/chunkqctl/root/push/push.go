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

// Package push implements "chunkqctl push": one record per stdin line.
package push

import (
	"bufio"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chunkq.dev/chunkq/cmd/chunkqctl/root/envcfg"
	"chunkq.dev/chunkq/pkg/queue"
)

func NewPushCmd() *cobra.Command {
	var chunkSize uint64

	cmd := &cobra.Command{
		Use:   "push <topic>",
		Short: "Push one record per stdin line onto a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := args[0]
			if chunkSize == 0 {
				chunkSize = uint64(viper.GetInt("chunk_size"))
			}

			env, err := envcfg.Open()
			if err != nil {
				return err
			}
			defer env.Close()

			p, err := env.Producer(topic, queue.WithChunkSize(chunkSize))
			if err != nil {
				return fmt.Errorf("open producer: %w", err)
			}
			defer p.Close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 64*1024), 1<<20)
			count := 0
			for scanner.Scan() {
				line := scanner.Bytes()
				payload := make([]byte, len(line))
				copy(payload, line)
				if err := p.PushBack(payload); err != nil {
					return fmt.Errorf("push line %d: %w", count+1, err)
				}
				count++
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			log.Info("pushed records", "topic", topic, "count", count)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&chunkSize, "chunk-size", 0, "chunk rotation threshold in bytes (default: config chunk_size)")
	return cmd
}
