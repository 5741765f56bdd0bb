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
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

const (
	ResolutionOptionName         = "resolution"
	AccumulateOverflowOptionName = "accumulate-overflow"
	NoValidateOptionName         = "no-validate"
	OutputOptionName             = "output"
)

// Options binds conversion flags, configured values are used for flags not given
type Options struct {
	Resolution         float64
	AccumulateOverflow bool
	NoValidate         bool
	Output             string
}

func (o *Options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.Resolution, ResolutionOptionName, 0,
		fmt.Sprintf("Output time resolution in seconds. Default is %g", config.DefaultResolution))
	cmd.Flags().BoolVar(&o.AccumulateOverflow, AccumulateOverflowOptionName, false,
		"Add the counter wrap period to timestamps following each overflow record")
	cmd.Flags().BoolVar(&o.NoValidate, NoValidateOptionName, false,
		"Do not check the file signature, measurement mode and record size")
	cmd.Flags().StringVarP(&o.Output, OutputOptionName, "o", "",
		fmt.Sprintf("Output file, - for stdout. Default is the input file name with %s suffix", config.DefaultTimesSuffix))
}

func (o *Options) Convert(cmd *cobra.Command, cfg *config.Config) pt2.Options {
	opts := pt2.Options{
		Resolution:         cfg.Resolution,
		AccumulateOverflow: cfg.AccumulateOverflow,
		Validate:           cfg.Validate,
	}
	if cmd.Flags().Changed(ResolutionOptionName) {
		opts.Resolution = o.Resolution
	}
	if cmd.Flags().Changed(AccumulateOverflowOptionName) {
		opts.AccumulateOverflow = o.AccumulateOverflow
	}
	if o.NoValidate {
		opts.Validate = false
	}
	return opts
}
