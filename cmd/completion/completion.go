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

package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	completionExample = `
Save bash completion to a file
# go-tttr completion bash > $HOME/.go-tttr_completions

Apply completions to the current zsh instance
# source <(go-tttr completion zsh)
`
)

var shells = map[string]func(cmd *cobra.Command, out io.Writer) error{
	"bash": func(cmd *cobra.Command, out io.Writer) error {
		return cmd.Root().GenBashCompletion(out)
	},
	"zsh": func(cmd *cobra.Command, out io.Writer) error {
		return cmd.Root().GenZshCompletion(out)
	},
	"fish": func(cmd *cobra.Command, out io.Writer) error {
		return cmd.Root().GenFishCompletion(out, true)
	},
	"powershell": func(cmd *cobra.Command, out io.Writer) error {
		return cmd.Root().GenPowerShellCompletion(out)
	},
}

// ErrUnknownShell returned for a shell there is no completion generator for
type ErrUnknownShell struct {
	Shell string
}

func (e ErrUnknownShell) Error() string {
	return fmt.Sprintf("Unknown shell %q, must be one of: bash, zsh, fish, powershell", e.Shell)
}

// NewCommand creates a cobra command object for generating shell completion scripts, bash by default
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion script",
		Example:   completionExample,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) == 1 {
				shell = args[0]
			}
			gen, ok := shells[shell]
			if !ok {
				return ErrUnknownShell{Shell: shell}
			}
			return gen(cmd, cmd.OutOrStdout())
		},
	}
	return cmd
}
