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
)

func NewHeaderCommand(cfg *config.Config, flags *apiFlags) *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Print the header of a PT2 file parsed by the API server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := flags.client(cfg).Header(args[0], cfg.Validate && !noValidate)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), header.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Do not check the file signature")
	return cmd
}
