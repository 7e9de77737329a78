package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/vesting-engine/vesting"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the rounding policies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEXAMPLE\tDESCRIPTION")
		for _, p := range vesting.Policies() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Policy, p.Name, p.Example, p.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
