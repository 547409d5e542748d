package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/state"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the current scan state",
	Long: `Remove the state document so the next scan starts fresh. Settings and the
scan history archive are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		if err := state.NewStore(root).Clear(); err != nil {
			return err
		}
		fmt.Println("Scan state cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
