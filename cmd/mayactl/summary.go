package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"banortesmart/backend/internal/consumption"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [utility]",
	Short: "Print the consumption summary",
	Long:  `Prints the weekly summary for electricity, water or both when no utility is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(loadConfig())
	if err != nil {
		return err
	}

	utilities := consumption.Utilities
	if len(args) == 1 {
		utility, err := consumption.ParseUtility(args[0])
		if err != nil {
			return err
		}
		utilities = []consumption.Utility{utility}
	}

	out := cmd.OutOrStdout()
	for _, utility := range utilities {
		summary, err := catalog.Summary(utility)
		if err != nil {
			return fmt.Errorf("summarizing %s: %w", utility, err)
		}
		printSummary(out, summary)
	}
	return nil
}

func printSummary(out io.Writer, s consumption.Summary) {
	fmt.Fprintf(out, "\n%s (%s)\n", s.Utility.Label(), s.Utility.Unit())
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "%-22s %s  $%s MXN\n", "Esta semana", s.CurrentWeek.DateRange, consumption.FormatNumber(s.CurrentWeek.Total))
	fmt.Fprintf(out, "%-22s %s  $%s MXN\n", "Semana pasada", s.LastWeek.DateRange, consumption.FormatNumber(s.LastWeek.Total))

	verdict := "gasto extra"
	if s.Savings.Saved {
		verdict = "ahorro"
	}
	fmt.Fprintf(out, "%-22s $%s MXN (%.1f%%, %s)\n", "Comparación", consumption.FormatNumber(s.Savings.Amount), s.Savings.Percentage, verdict)
	fmt.Fprintf(out, "%-22s %s %s  $%s MXN\n", "Mayor consumo", s.HighestCostDay.Day, s.HighestCostDay.Date, consumption.FormatNumber(s.HighestCostDay.Cost))
	fmt.Fprintf(out, "%-22s $%s MXN\n", "Promedio diario", consumption.FormatAmount(s.AverageDailyCost))
	fmt.Fprintf(out, "%-22s %d\n", "Picos", len(s.Spikes))
	for _, spike := range s.Spikes {
		fmt.Fprintf(out, "  %-4s %s  $%s MXN\n", spike.Day, spike.Date, consumption.FormatNumber(spike.Cost))
	}
}
