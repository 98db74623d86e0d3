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

// Package pop implements "chunkqctl pop": print up to N records.
package pop

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chunkq.dev/chunkq/cmd/chunkqctl/root/envcfg"
	"chunkq.dev/chunkq/pkg/queue"
)

func NewPopCmd() *cobra.Command {
	var count int
	var chunksToKeep uint64

	cmd := &cobra.Command{
		Use:   "pop <topic>",
		Short: "Pop up to N records off a topic and print them, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := args[0]
			if chunksToKeep == 0 {
				chunksToKeep = uint64(viper.GetInt("chunks_to_keep"))
			}

			env, err := envcfg.Open()
			if err != nil {
				return err
			}
			defer env.Close()

			c, err := env.Consumer(topic, queue.WithChunksToKeep(chunksToKeep))
			if err != nil {
				return fmt.Errorf("open consumer: %w", err)
			}
			defer c.Close()

			items, err := c.PopFrontN(count)
			if err != nil {
				return fmt.Errorf("pop: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, item := range items {
				fmt.Fprintln(out, string(item.Data))
			}
			if drops := c.RetentionDrops(); drops > 0 {
				log.Warn("retention discarded unread chunks", "topic", topic, "drops", drops)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "maximum number of records to pop")
	cmd.Flags().Uint64Var(&chunksToKeep, "chunks-to-keep", 0, "retention window in chunks (default: config chunks_to_keep)")
	return cmd
}
