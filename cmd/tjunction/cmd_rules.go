package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/anggasct/tjunction"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the right-of-way rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "APPROACH\tINTENT\tEXIT\tYIELDS TO\tMOVEMENT")
			for _, rule := range tjunction.Rules() {
				yields := "-"
				if !rule.Unconditional() {
					names := make([]string, 0, len(rule.YieldTo))
					for _, y := range rule.YieldTo {
						names = append(names, y.String())
					}
					yields = strings.Join(names, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rule.Approach, rule.Intent, rule.Exit, yields, rule.Description)
			}
			return w.Flush()
		},
	}
}
