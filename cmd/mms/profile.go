package main

import (
	"fmt"

	"mms/internal/core"
	"mms/internal/domain"

	"github.com/spf13/cobra"
)

var (
	profileAddAddress string
	profileAddMods    string
	profileAddBranch  string
	profileRmYes      bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage sync profiles",
	Long: `Manage named sync profiles. A profile pins a server address, a branch
and a local mods directory; each profile keeps its own overrides.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create or update a profile",
	Long: `Create a profile, or update fields of an existing one. Only the flags
given are changed on update.

Examples:
  mms profile add smp --address mods.example.net --branch main --mods ~/.minecraft/mods
  mms profile add smp --branch snapshot`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileAdd,
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a profile and its overrides",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileRm,
}

func init() {
	profileAddCmd.Flags().StringVar(&profileAddAddress, "address", "", "server host or host/prefix")
	profileAddCmd.Flags().StringVar(&profileAddMods, "mods", "", "local mods directory")
	profileAddCmd.Flags().StringVar(&profileAddBranch, "branch", "", "branch to sync against")
	profileRmCmd.Flags().BoolVarP(&profileRmYes, "yes", "y", false, "skip confirmation prompt")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileAddCmd, profileRmCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	names, err := service.ListProfiles()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles yet. Create one with 'mms profile add'.")
		return nil
	}

	last := service.LastProfile()
	for _, name := range names {
		marker := "  "
		if name == last {
			marker = colorGreen("* ")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	profile, err := service.Profile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:    %s\n", profile.Name)
	fmt.Fprintf(out, "Address: %s\n", profile.Address)
	fmt.Fprintf(out, "Branch:  %s\n", profile.Branch)
	fmt.Fprintf(out, "Mods:    %s\n", profile.ModsPath)
	return nil
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	name := args[0]
	profile, err := service.Profile(name)
	if err != nil {
		// New profile; mods path defaults to the launcher convention.
		profile = &domain.Profile{Name: name, ModsPath: core.DefaultModsPath()}
	}

	if profileAddAddress != "" {
		profile.Address = profileAddAddress
	}
	if profileAddMods != "" {
		profile.ModsPath = profileAddMods
	}
	if profileAddBranch != "" {
		profile.Branch = profileAddBranch
	}

	if profile.Address == "" {
		return fmt.Errorf("profile %s has no server address; pass --address", name)
	}

	if err := service.SaveProfile(profile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", name)
	return nil
}

func runProfileRm(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	name := args[0]
	if !profileRmYes {
		ok, err := promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Delete profile %s and its overrides?", name), false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}

	if err := service.DeleteProfile(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", name)
	return nil
}
