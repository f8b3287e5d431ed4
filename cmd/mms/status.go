package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statusProfile string
	statusLimit   int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent sync runs",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusProfile, "profile", "p", "", "limit to one profile (default: all)")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	runs, err := service.DB().RecentRuns(statusProfile, statusLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sync runs recorded yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, run := range runs {
		state := colorGreen("ok")
		if run.DownloadsFailed > 0 || run.DeletesFailed > 0 {
			state = colorRed("partial")
		}
		if run.Cancelled {
			state = colorYellow("cancelled")
		}
		fmt.Fprintf(out, "%s  %-12s %-10s %-8s %s  ↓%d/%d ✗%d\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.ProfileName, run.Branch, run.Strategy, state,
			run.DownloadsOK, run.DownloadsOK+run.DownloadsFailed,
			run.DownloadsFailed+run.DeletesFailed)

		if verbose {
			failures, err := service.DB().RunFailures(run.ID)
			if err != nil {
				return err
			}
			for _, f := range failures {
				fmt.Fprintf(out, "    %s %s: %s\n", f.Kind, f.Unit, f.Reason)
			}
		}
	}
	return nil
}
