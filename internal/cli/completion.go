package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how one shell loads staffplan completions.
type shellCompletion struct {
	generate func(w io.Writer) error
	// load is the one-liner that sources the script in a running session.
	load string
	// target returns the install path under home; nil means no --install.
	target func(home string) string
	// notes are printed after a successful install.
	notes func(target string) []string
}

var shells = map[string]shellCompletion{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		load:     `eval "$(staffplan completion bash)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "staffplan")
		},
		notes: func(target string) []string {
			return []string{"Restart your shell or run: source " + target}
		},
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		load:     `eval "$(staffplan completion zsh)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_staffplan")
		},
		notes: func(target string) []string {
			return []string{
				"Ensure this directory is in your fpath. Add to ~/.zshrc if needed:",
				fmt.Sprintf("  fpath=(%s $fpath)", filepath.Dir(target)),
				"  autoload -Uz compinit && compinit",
			}
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		load:     "staffplan completion fish | source",
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "staffplan.fish")
		},
		notes: func(string) []string {
			return []string{"Completions load in new fish sessions automatically."}
		},
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		load:     "staffplan completion powershell | Out-String | Invoke-Expression",
	},
}

func shellNames() []string {
	names := make([]string, 0, len(shells))
	for name := range shells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for staffplan",
	Long: `Print or install tab-completions for staffplan commands and flags.
Skill, client and staff flags complete from the current dataset.

Supported shells: bash, zsh, fish, powershell

Quick install:

  staffplan completion bash --install
  staffplan completion zsh --install
  staffplan completion fish --install

Or print the script and source it yourself:

  eval "$(staffplan completion bash)"
  staffplan completion powershell | Out-String | Invoke-Expression`,
	ValidArgs: shellNames(),
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell's completion directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	sh, ok := shells[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: %s)", args[0], strings.Join(shellNames(), ", "))
	}

	if completionInstall {
		return installCompletion(cmd, args[0], sh)
	}

	// Hints go to stderr so the script can be piped.
	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, "# To load completions in your current session:")
	fmt.Fprintf(errOut, "#   %s\n", sh.load)
	if sh.target != nil {
		fmt.Fprintf(errOut, "# To install permanently:\n#   staffplan completion %s --install\n", args[0])
	}
	return sh.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, name string, sh shellCompletion) error {
	if sh.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; add '%s' to your profile", name, sh.load)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}

	target := sh.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, sh.generate); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	for _, line := range sh.notes(target) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// writeCompletionFile writes the generated script to target, reporting
// close errors as well as write errors.
func writeCompletionFile(target string, generate func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
