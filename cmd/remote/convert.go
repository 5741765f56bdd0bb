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

	"jinr.ru/greenlab/go-tttr/cmd/convert"
	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

const (
	NameOptionName = "name"
)

func NewConvertCommand(cfg *config.Config, flags *apiFlags) *cobra.Command {
	var name string
	options := &convert.Options{}
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a PT2 file on the API server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := options.Output
			if out == "" {
				out = pt2.TimesFileName(args[0], cfg.Suffix)
			}
			summary, err := flags.client(cfg).Convert(args[0], out, options.Convert(cmd, cfg), name)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
	options.AddFlags(cmd)
	cmd.Flags().StringVar(&name, NameOptionName, "", "Record the conversion in the server catalog under this name")
	return cmd
}
