package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List percentile scopes and their grouping columns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SCOPE\tGROUP BY")
		for _, name := range scope.Names() {
			s, err := scope.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\n", s.Name, strings.Join(s.GroupColumns, ", "))
		}
		return tw.Flush()
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List resolved roles with their weights and must-haves",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rs, err := roles.LoadOrDefault(cfg.RolesPath)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROLE\tBUCKET\tMUST HAVE\tWEIGHTS")
		for _, r := range rs {
			must := make([]string, len(r.MustHaves))
			for i, t := range r.MustHaves {
				must[i] = fmt.Sprintf("%s>=%g", t.Metric, t.Min)
			}
			weights := make([]string, len(r.Weights))
			for i, w := range r.Weights {
				neg := ""
				if w.Negative {
					neg = "-"
				}
				weights[i] = fmt.Sprintf("%s%s=%.2f", neg, w.Metric, w.Weight)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Bucket, strings.Join(must, " "), strings.Join(weights, " "))
		}
		return tw.Flush()
	},
}
