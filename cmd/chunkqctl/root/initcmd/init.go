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

// Package initcmd implements "chunkqctl init".
package initcmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"chunkq.dev/chunkq/cmd/chunkqctl/root/envcfg"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the queue environment's index and chunks directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envcfg.Open()
			if err != nil {
				return err
			}
			defer env.Close()
			log.Info("environment ready", "max_topics", env.MaxTopics())
			return nil
		},
	}
}
