/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-tttr/pkg/command"
	"jinr.ru/greenlab/go-tttr/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show conversions recorded in the local catalog",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewShowCommand(cfg))
	return cmd
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := command.RequireCatalog(cfg)
			if err != nil {
				return err
			}
			defer cat.Close()
			summaries, err := cat.List()
			if err != nil {
				return err
			}
			for _, summary := range summaries {
				runs, err := cat.Runs(summary.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\truns: %d\trecords: %d\ttimestamps: %d\n",
					summary.Name, runs, summary.Records, summary.Timestamps)
			}
			return nil
		},
	}
	return cmd
}

func NewShowCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the last conversion recorded under the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := command.RequireCatalog(cfg)
			if err != nil {
				return err
			}
			defer cat.Close()
			summary, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
	return cmd
}
