package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"mms/internal/core"
	"mms/internal/domain"
	"mms/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	syncProfile    string
	syncWith       string
	syncWithout    string
	syncKeep       string
	syncDeleteKept string
	syncSkipDelete string
	syncYes        bool
	syncDryRun     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the mods directory against the profile's branch",
	Long: `Fetch the branch manifest, compare it with the local mods directory and
the profile's saved overrides, and apply the resulting plan after
confirmation.

Required mods are always downloaded when missing or size-mismatched.
Optional mods are downloaded only when opted in (--with, persisted for
future runs). Local files the branch no longer lists are deleted unless
keep-flagged (--keep). A keep-flagged file is only removed again after
an explicit --delete-kept.

Examples:
  mms sync
  mms sync --profile smp --with voicechat.jar
  mms sync --keep OptiFine.jar --yes
  mms sync --delete-kept OldMap.jar`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncProfile, "profile", "p", "", "profile to sync (default: last used)")
	syncCmd.Flags().StringVar(&syncWith, "with", "", "comma-separated optional mods to opt into")
	syncCmd.Flags().StringVar(&syncWithout, "without", "", "comma-separated optional mods to opt out of")
	syncCmd.Flags().StringVar(&syncKeep, "keep", "", "comma-separated files to keep even when unlisted")
	syncCmd.Flags().StringVar(&syncDeleteKept, "delete-kept", "", "comma-separated keep-flagged files to delete this run")
	syncCmd.Flags().StringVar(&syncSkipDelete, "skip-delete", "", "comma-separated files to leave alone this run")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "skip confirmation prompt")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "show the plan without executing it")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	profileName := syncProfile
	if profileName == "" {
		profileName = service.LastProfile()
	}
	if profileName == "" {
		return fmt.Errorf("no profile selected; create one with 'mms profile add' or pass --profile")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sess, err := service.Activate(ctx, profileName)
	if err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			return branchFallback(ctx, service, profileName, err)
		}
		return err
	}

	pending := sess.Propose()
	printProposal(cmd, sess, pending)

	if syncDryRun {
		return nil
	}
	if pending.Result.Empty() && syncWith == "" && syncWithout == "" && syncDeleteKept == "" {
		fmt.Fprintln(cmd.OutOrStdout(), colorGreen("Already up to date."))
		return nil
	}

	choices := core.UserChoices{
		AddOptionals:    splitList(syncWith),
		RemoveOptionals: splitList(syncWithout),
		Keep:            splitList(syncKeep),
		RemoveKept:      splitList(syncDeleteKept),
		SkipDelete:      splitList(syncSkipDelete),
	}
	plan, err := sess.Confirm(pending, choices)
	if err != nil {
		return err
	}

	if len(plan.Downloads) == 0 && len(plan.Deletes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), colorGreen("Nothing to do."))
		return nil
	}

	if !syncYes {
		ok, err := promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Download %d mod(s) (%s, %s) and delete %d file(s)?",
				len(plan.Downloads), humanBytes(plan.TotalBytes()), plan.Strategy, len(plan.Deletes)),
			true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}

	result, err := executePlan(ctx, service, sess, plan)
	if result == nil {
		return err
	}
	printResult(cmd, result)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("%d unit(s) failed", result.DownloadsFailed+result.DeletesFailed)
	}
	return nil
}

// executePlan runs the plan under the TUI unless --plain asked for line
// output.
func executePlan(ctx context.Context, service *core.Service, sess *core.Session, plan *core.Plan) (*core.Result, error) {
	if plain {
		return service.Execute(ctx, sess, plan, func(ev core.ProgressEvent) {
			if ev.State == core.StateInProgress {
				return // Too chatty for line output
			}
			fmt.Printf("%-8s %-10s %s\n", ev.Kind, ev.State, ev.Unit)
		})
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(
		fmt.Sprintf("Syncing %s (%s)", sess.Profile.Name, sess.Profile.Branch),
		plan.TotalBytes(), cancel)
	program := tea.NewProgram(model)

	var result *core.Result
	var execErr error
	go func() {
		result, execErr = service.Execute(runCtx, sess, plan, func(ev core.ProgressEvent) {
			program.Send(tui.EventMsg{Event: ev})
		})
		program.Send(tui.DoneMsg{Result: result, Err: execErr})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		return result, fmt.Errorf("running progress view: %w", err)
	}
	return result, execErr
}

// branchFallback reports a missing branch along with the branches the
// server does offer, so the user can fix the profile.
func branchFallback(ctx context.Context, service *core.Service, profileName string, cause error) error {
	profile, perr := service.Profile(profileName)
	if perr != nil {
		return cause
	}
	branches, berr := service.Branches(ctx, profile)
	if berr != nil || len(branches) == 0 {
		return cause
	}
	return fmt.Errorf("branch %q is not published by %s (available: %v); update the profile with 'mms profile add'",
		profile.Branch, profile.Address, branches)
}

func printProposal(cmd *cobra.Command, sess *core.Session, pending *core.PendingPlan) {
	out := cmd.OutOrStdout()
	result := pending.Result

	fmt.Fprintf(out, "Profile %s, branch %s: %d mod(s) listed, %d local file(s)\n",
		sess.Profile.Name, sess.Profile.Branch, len(sess.Manifest.Mods), len(sess.Inventory))

	for _, w := range result.Warnings {
		fmt.Fprintln(out, colorYellow("warning: "+w))
	}

	if len(result.ToDownload) > 0 {
		fmt.Fprintln(out, "To download:")
		for _, entry := range result.ToDownload {
			tag := ""
			if entry.Optional {
				tag = " (optional)"
			}
			fmt.Fprintf(out, "  + %s%s (%s)\n", entry.Name, tag, humanBytes(entry.Size))
		}
	}
	if len(result.ToDelete) > 0 {
		fmt.Fprintln(out, "To delete:")
		for _, cand := range result.ToDelete {
			tag := ""
			if cand.Optional {
				tag = " (unselected optional)"
			}
			fmt.Fprintf(out, "  - %s%s\n", cand.Name, tag)
		}
	}
	if verbose && len(result.Unchanged) > 0 {
		fmt.Fprintf(out, "%d file(s) unchanged\n", len(result.Unchanged))
	}
}

func printResult(cmd *cobra.Command, result *core.Result) {
	out := cmd.OutOrStdout()
	if result.Cancelled {
		fmt.Fprintln(out, colorYellow("Sync cancelled."))
	}
	fmt.Fprintf(out, "Downloads: %s, %s. Deletes: %s, %s.\n",
		colorGreen(fmt.Sprintf("%d ok", result.DownloadsSucceeded)),
		colorRed(fmt.Sprintf("%d failed", result.DownloadsFailed)),
		colorGreen(fmt.Sprintf("%d ok", result.DeletesSucceeded)),
		colorRed(fmt.Sprintf("%d failed", result.DeletesFailed)))
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  %s %s: %s\n", f.Kind, f.Unit, f.Reason)
	}
}
