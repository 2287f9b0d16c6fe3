package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect empathy profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded empathy profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile's stakeholder weights",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	if profileStore == nil {
		return errors.New("profile store not configured")
	}

	profiles := profileStore.Profiles()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd.Println("Profiles:")
	for _, name := range names {
		cmd.Printf("  %s (%d stakeholders)\n", name, len(profiles[name].Weights))
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if profileStore == nil {
		return errors.New("profile store not configured")
	}

	profile, err := profileStore.Profile(args[0])
	if err != nil {
		return fmt.Errorf("profile lookup failed: %w", err)
	}

	stakeholders := make([]string, 0, len(profile.Weights))
	for stakeholder := range profile.Weights {
		stakeholders = append(stakeholders, stakeholder)
	}
	sort.Slice(stakeholders, func(i, j int) bool {
		wi, wj := profile.Weights[stakeholders[i]], profile.Weights[stakeholders[j]]
		if wi == wj {
			return stakeholders[i] < stakeholders[j]
		}
		return wi > wj
	})

	cmd.Printf("Profile %s:\n", profile.Name)
	for _, stakeholder := range stakeholders {
		cmd.Printf("  %-24s %.4f\n", stakeholder, profile.Weights[stakeholder])
	}
	return nil
}
