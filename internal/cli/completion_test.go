package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCompletionCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"completion"}, args...))
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompletionCommand_DisablesDefault(t *testing.T) {
	if !rootCmd.CompletionOptions.DisableDefaultCmd {
		t.Error("expected Cobra default completion command to be disabled")
	}
}

func TestCompletionCommand_NoArgsShowsHelp(t *testing.T) {
	out, _, err := runCompletionCmd(t)
	if err != nil {
		t.Fatalf("completion with no args should show help, not error: %v", err)
	}
	if !strings.Contains(out, "Quick install") {
		t.Error("no-args output should show help with install instructions")
	}
}

func TestCompletionCommand_Scripts(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_staffplan"},
		{"zsh", "compdef"},
		{"fish", "complete"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, hints, err := runCompletionCmd(t, tt.shell)
			if err != nil {
				t.Fatalf("completion %s failed: %v", tt.shell, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("%s script should contain %q", tt.shell, tt.want)
			}
			if strings.Contains(out, "# To load completions") {
				t.Error("hints should not be mixed into the script on stdout")
			}
			if !strings.Contains(hints, shells[tt.shell].load) {
				t.Errorf("stderr hints missing load command:\n%s", hints)
			}
		})
	}
}

func TestCompletionCommand_UnsupportedShell(t *testing.T) {
	_, _, err := runCompletionCmd(t, "nushell")
	if err == nil {
		t.Fatal("expected error for unsupported shell")
	}
	if !strings.Contains(err.Error(), "bash, fish, powershell, zsh") {
		t.Errorf("error should list supported shells, got: %v", err)
	}
}

func TestCompletionCommand_Install(t *testing.T) {
	tests := []struct {
		shell string
		path  []string
		want  string
	}{
		{"bash", []string{".local", "share", "bash-completion", "completions", "staffplan"}, "__start_staffplan"},
		{"zsh", []string{".local", "share", "zsh", "site-functions", "_staffplan"}, "compdef"},
		{"fish", []string{".config", "fish", "completions", "staffplan.fish"}, "complete"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			tmpHome := t.TempDir()
			t.Setenv("HOME", tmpHome)
			t.Setenv("USERPROFILE", tmpHome) // Windows

			out, _, err := runCompletionCmd(t, tt.shell, "--install")
			if err != nil {
				t.Fatalf("completion %s --install failed: %v", tt.shell, err)
			}

			target := filepath.Join(append([]string{tmpHome}, tt.path...)...)
			data, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("expected completion file at %s: %v", target, err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("installed script should contain %q", tt.want)
			}
			if !strings.Contains(out, "installed to "+target) {
				t.Errorf("install output should name the target:\n%s", out)
			}
		})
	}
}

func TestCompletionCommand_InstallPowershellFails(t *testing.T) {
	_, _, err := runCompletionCmd(t, "powershell", "--install")
	if err == nil {
		t.Fatal("expected error for powershell --install")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error should mention 'not supported', got: %v", err)
	}
}
