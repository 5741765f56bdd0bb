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

package remote

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

func NewListCommand(cfg *config.Config, flags *apiFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [name]",
		Short: "List conversions recorded by the API server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := flags.client(cfg)
			if len(args) == 1 {
				summary, err := client.Conversion(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), summary.String())
				return nil
			}
			summaries, err := client.Conversions()
			if err != nil {
				return err
			}
			printSummaries(cmd, summaries)
			return nil
		},
	}
	return cmd
}

func printSummaries(cmd *cobra.Command, summaries []*pt2.Summary) {
	for _, summary := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\trecords: %d\ttimestamps: %d\tfinished: %s\n",
			summary.Name, summary.Records, summary.Timestamps, summary.Finished.Format("2006-01-02 15:04:05"))
	}
}
