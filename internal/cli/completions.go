package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
)

// loadFilterOptions reads the filter values from the configured source.
// Completion never reports errors, so failures yield no options.
func loadFilterOptions() (core.FilterOptions, bool) {
	if Source == nil {
		return core.FilterOptions{}, false
	}
	ds, err := Source.Load(context.Background())
	if err != nil {
		return core.FilterOptions{}, false
	}
	return core.ListFilterOptions(ds), true
}

// optionCompletions renders options as "id\tlabel (n tasks)" entries
// matching toComplete. toComplete may hold a comma-separated list; only
// its last element is completed.
func optionCompletions(opts []core.FilterOption, toComplete string) []string {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, toComplete = toComplete[:i+1], toComplete[i+1:]
	}
	var out []string
	for _, o := range opts {
		if toComplete != "" && !strings.HasPrefix(strings.ToLower(o.ID), strings.ToLower(toComplete)) {
			continue
		}
		desc := o.Label
		if desc == o.ID {
			desc = ""
		}
		out = append(out, prefix+o.ID+"\t"+strings.TrimSpace(desc+" "+taskCountLabel(o.TaskCount)))
	}
	return out
}

func taskCountLabel(n int) string {
	if n == 1 {
		return "(1 task)"
	}
	return fmt.Sprintf("(%d tasks)", n)
}

func completeSkills(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	opts, ok := loadFilterOptions()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return optionCompletions(opts.Skills, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeClients(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	opts, ok := loadFilterOptions()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return optionCompletions(opts.Clients, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeStaff(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	opts, ok := loadFilterOptions()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return optionCompletions(opts.Staff, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeGroupings returns a completion function for --group values.
func completeGroupings(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"skill\tOne row per skill",
		"client\tOne row per client",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeStaffModes returns a completion function for --staff-mode values.
func completeStaffModes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"all\tEvery task",
		"specific\tTasks preferring the --staff ids",
		"none\tUnassigned tasks only",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completePresets returns a completion function for --preset values.
func completePresets(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"quarter\tFirst 3 months",
		"half-year\tFirst 6 months",
		"year\tFirst 12 months",
		"custom\tUse --from and --to",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeDrillDownArgs completes the group argument of drilldown with
// skills, or with client ids when --group client is set.
func completeDrillDownArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if g, _ := cmd.Flags().GetString("group"); strings.EqualFold(g, "client") {
		return completeClients(cmd, args, toComplete)
	}
	return completeSkills(cmd, args, toComplete)
}

// registerMatrixCompletions registers flag completion functions on a
// command that takes the shared matrix flags.
func registerMatrixCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("group", completeGroupings)
	_ = cmd.RegisterFlagCompletionFunc("skill", completeSkills)
	_ = cmd.RegisterFlagCompletionFunc("client", completeClients)
	_ = cmd.RegisterFlagCompletionFunc("staff", completeStaff)
	_ = cmd.RegisterFlagCompletionFunc("staff-mode", completeStaffModes)
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)
}
