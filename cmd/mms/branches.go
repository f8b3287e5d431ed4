package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchesProfile string

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List the branches the profile's server publishes",
	RunE:  runBranches,
}

func init() {
	branchesCmd.Flags().StringVarP(&branchesProfile, "profile", "p", "", "profile whose server to ask (default: last used)")
	rootCmd.AddCommand(branchesCmd)
}

func runBranches(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	name := branchesProfile
	if name == "" {
		name = service.LastProfile()
	}
	if name == "" {
		return fmt.Errorf("no profile selected; create one with 'mms profile add' or pass --profile")
	}

	profile, err := service.Profile(name)
	if err != nil {
		return err
	}

	branches, err := service.Branches(cmd.Context(), profile)
	if err != nil {
		return fmt.Errorf("listing branches from %s: %w", profile.Address, err)
	}

	for _, branch := range branches {
		marker := "  "
		if branch == profile.Branch {
			marker = colorGreen("* ")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, branch)
	}
	return nil
}
