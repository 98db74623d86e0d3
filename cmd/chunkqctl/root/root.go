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

// Package root assembles the chunkqctl command tree.
package root

import (
	"github.com/spf13/cobra"

	"chunkq.dev/chunkq/cmd/chunkqctl/root/initcmd"
	"chunkq.dev/chunkq/cmd/chunkqctl/root/lag"
	"chunkq.dev/chunkq/cmd/chunkqctl/root/pop"
	"chunkq.dev/chunkq/cmd/chunkqctl/root/push"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunkqctl <command> [flags]",
		Short: "Inspect and drive a chunkq queue directory",
		Long:  `chunkqctl reads and writes topics in a chunkq environment from the command line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(initcmd.NewInitCmd())
	cmd.AddCommand(push.NewPushCmd())
	cmd.AddCommand(pop.NewPopCmd())
	cmd.AddCommand(lag.NewLagCmd())

	return cmd
}
