package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/vesting"
)

var (
	scheduleShares  int64
	scheduleVesting int
	scheduleCliff   int
	schedulePeriod  int
	scheduleStart   string
	schedulePolicy  string
	scheduleJSON    bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Compute a vesting schedule",
	Long: `Compute the disbursement schedule of a grant and print it.

The first row is the cliff lump sum. --policy takes the policy number (1-7)
or its name; run "vesting policies" for the list.`,
	Example: `  vesting schedule --shares 100 --vesting 36 --cliff 12 --period 12 --start 2025-01-01 --policy front_loaded`,
	RunE:    runSchedule,
}

func init() {
	scheduleCmd.Flags().Int64Var(&scheduleShares, "shares", 0, "Total shares in the grant")
	scheduleCmd.Flags().IntVar(&scheduleVesting, "vesting", 48, "Vesting horizon in months")
	scheduleCmd.Flags().IntVar(&scheduleCliff, "cliff", 12, "Cliff in months")
	scheduleCmd.Flags().IntVar(&schedulePeriod, "period", 1, "Months between disbursements")
	scheduleCmd.Flags().StringVar(&scheduleStart, "start", "", "Vesting start date (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVar(&schedulePolicy, "policy", vesting.CumulativeRounding.String(), "Rounding policy")
	scheduleCmd.Flags().BoolVar(&scheduleJSON, "json", false, "Output as a {date: shares} JSON object")
	_ = scheduleCmd.MarkFlagRequired("shares")
	_ = scheduleCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	req, err := factory.NewGrantFactory().ToRequest(factory.GrantJSON{
		TotalShares:    scheduleShares,
		VestingMonths:  scheduleVesting,
		CliffMonths:    scheduleCliff,
		PeriodMonths:   schedulePeriod,
		StartDate:      scheduleStart,
		RoundingPolicy: factory.PolicyRef(schedulePolicy),
	})
	if err != nil {
		return err
	}

	schedule, err := vesting.Compute(req)
	if err != nil {
		return err
	}

	if scheduleJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(schedule)
	}
	return printSchedule(cmd.OutOrStdout(), schedule)
}

func printSchedule(out io.Writer, s *vesting.Schedule) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tDATE\tSHARES\t\n")
	for i, t := range s.Tranches {
		label := ""
		if t.Cliff {
			label = "cliff"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, t.Date, t.Shares, label)
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\t%s\n", s.Total(), s.Request.Policy)
	return tw.Flush()
}
