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

package header

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-tttr/pkg/command"
	"jinr.ru/greenlab/go-tttr/pkg/config"
)

const (
	NoValidateOptionName = "no-validate"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "header [file]",
		Short: "Print the header of a PT2 file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := command.StdioName
			if len(args) == 1 {
				in = args[0]
			}
			header, err := command.ReadHeaderFile(in, cfg.Validate && !noValidate, cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), header.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noValidate, NoValidateOptionName, false, "Do not check the file signature")
	return cmd
}
