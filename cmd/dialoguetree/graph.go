package main

import (
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <graph-id>",
	Short: "Export a graph as a Mermaid flowchart",
	Long:  `Compiles the graph and prints a Mermaid diagram (graph TD). With --slot, nodes visited in that save are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		slot, _ := cmd.Flags().GetString("slot")
		return p.Graph(cmd.Context(), cmd.OutOrStdout(), args[0], slot)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("slot", "", "Save slot whose visits are highlighted")
}
