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

// Package lag implements "chunkqctl lag": print a topic's unread record count.
package lag

import (
	"fmt"

	"github.com/spf13/cobra"

	"chunkq.dev/chunkq/cmd/chunkqctl/root/envcfg"
)

func NewLagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lag <topic>",
		Short: "Print the number of unread records on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := args[0]

			env, err := envcfg.Open()
			if err != nil {
				return err
			}
			defer env.Close()

			c, err := env.Consumer(topic)
			if err != nil {
				return fmt.Errorf("open consumer: %w", err)
			}
			defer c.Close()

			lag, err := c.Lag()
			if err != nil {
				return fmt.Errorf("lag: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), lag)
			return nil
		},
	}
}
