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

package convert

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-tttr/pkg/catalog"
	"jinr.ru/greenlab/go-tttr/pkg/command"
	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/log"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

const (
	CatalogOptionName = "catalog"
	NameOptionName    = "name"

	convertExample = `
Convert a file into data.pt2.times
# go-tttr convert data.pt2

Convert stdin to stdout with nanosecond resolution
# go-tttr convert --resolution 1e-9 < data.pt2 > data.times
`
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var record bool
	var name string
	options := &Options{}
	cmd := &cobra.Command{
		Use:     "convert [file]",
		Short:   "Convert a PT2 file into a stream of 64 bit timestamps",
		Example: convertExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := command.StdioName
			if len(args) == 1 {
				in = args[0]
			}
			// the catalog is opened first, so nothing is written when it is unavailable
			var cat *catalog.Catalog
			if record {
				if in == command.StdioName && name == "" {
					return command.ErrNoName{}
				}
				var err error
				if cat, err = command.RequireCatalog(cfg); err != nil {
					return err
				}
				defer cat.Close()
			}

			summary, err := command.ConvertFile(in, options.Output, options.Convert(cmd, cfg), cfg,
				cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				if kind := pt2.Kind(err); kind != "" {
					log.Error("Conversion failed: %s", kind)
				}
				return err
			}
			if name != "" {
				summary.Name = name
			}
			log.Debug("Conversion summary:\n%s", summary)
			if cat != nil {
				return cat.Put(summary)
			}
			return nil
		},
	}
	options.AddFlags(cmd)
	cmd.Flags().BoolVar(&record, CatalogOptionName, false, "Record the conversion in the catalog")
	cmd.Flags().StringVar(&name, NameOptionName, "", "Catalog name of the conversion. Default is the input file name")
	return cmd
}
