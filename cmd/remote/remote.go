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

	"jinr.ru/greenlab/go-tttr/pkg/command"
	"jinr.ru/greenlab/go-tttr/pkg/config"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
)

type apiFlags struct {
	address string
	port    int
}

func (f *apiFlags) client(cfg *config.Config) *command.ApiClient {
	if f.address != "" {
		cfg.ApiConfig.Address = f.address
	}
	if f.port != 0 {
		cfg.ApiConfig.Port = f.port
	}
	return command.NewApiClient(cfg)
}

func NewCommand(cfg *config.Config) *cobra.Command {
	flags := &apiFlags{}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Work with a running API server",
	}
	cmd.PersistentFlags().StringVar(&flags.address, AddressOptionName, "", fmt.Sprintf("API server address. E.g. %s", config.DefaultApiAddress))
	cmd.PersistentFlags().IntVar(&flags.port, PortOptionName, 0, fmt.Sprintf("API server port. E.g. %d", config.DefaultApiPort))
	cmd.AddCommand(NewConvertCommand(cfg, flags))
	cmd.AddCommand(NewHeaderCommand(cfg, flags))
	cmd.AddCommand(NewListCommand(cfg, flags))
	return cmd
}
