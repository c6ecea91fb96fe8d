package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/cli"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the intent catalog",
	}
	var output string
	check := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate the catalog and print its statistics",
		Long: `Load the catalog strictly and print intent and pattern counts, plus patterns that
appear under more than one response. Exits non-zero when the catalog cannot be loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, _, err := loadConfig(opts.configPath)
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}
			cat, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}
			return cli.WriteCatalogStats(cmd.OutOrStdout(), path, cat.Stats(), format)
		},
	}
	check.Flags().StringVar(&output, "output", "text", "output format: text or json")
	cmd.AddCommand(check)
	return cmd
}
