package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage save slots",
	Long:  `List, inspect and remove the dialogue records kept in the save store.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all save slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configFrom(cmd).ListSlots(cmd.Context(), cmd.OutOrStdout())
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <slot>",
	Short: "Print the records of a save slot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configFrom(cmd).ShowSlot(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <slot>...",
	Short: "Remove one or more save slots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configFrom(cmd).DeleteSlots(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d slot(s)\n", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyLsCmd, historyShowCmd, historyRmCmd)
}
