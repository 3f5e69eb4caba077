package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-id...]",
	Short: "Compile graphs and report every invalid node",
	Long:  `Compiles the named graphs, or every graph in --dir, and prints one diagnostic per invalid node.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return p.WatchValidate(cmd.Context(), cmd.OutOrStdout())
		}
		return p.Validate(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Revalidate graphs whenever their files change")
}
