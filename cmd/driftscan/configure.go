package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/settings"
)

var configureSet []string

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Show or change scan settings",
	Long: `Show the current settings document, or change individual keys with --set.

The settings live in .driftscan/settings.md: a markdown document where only
lines matching the two-level key:value grammar are machine-read. Prose in
the file survives rewrites.

Recognized keys:
  ` + strings.Join(settings.Keys(), "\n  "),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		store := settings.NewStore(root)

		cfg, err := store.Read()
		if err != nil {
			return err
		}

		if len(configureSet) == 0 {
			fmt.Print(settings.Format(cfg))
			return nil
		}

		for _, pair := range configureSet {
			key, value, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("--set wants key=value, got %q", pair)
			}
			if err := settings.Apply(&cfg, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return err
			}
		}

		if err := store.Write(cfg); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", store.Path())
		return nil
	},
}

func init() {
	configureCmd.Flags().StringArrayVar(&configureSet, "set", nil, "set a key (repeatable), e.g. --set scan.depth=thorough")
	rootCmd.AddCommand(configureCmd)
}
