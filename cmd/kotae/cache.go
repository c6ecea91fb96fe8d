package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/storage"
)

var errNoCache = errors.New("storage.embedding_cache_path is not set")

func openCache(opts *rootOptions) (*storage.SQLiteStorage, string, error) {
	cfg, _, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, "", err
	}
	path := cfg.Storage.EmbeddingCachePath
	if path == "" {
		return nil, "", errNoCache
	}
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, "", err
	}
	return store, path, nil
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the persistent embedding cache",
	}

	var output string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored embeddings per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			store, path, err := openCache(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			models, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			size, err := store.SizeBytes()
			if err != nil {
				return err
			}
			return cli.WriteCacheStats(cmd.OutOrStdout(), path, size, models, format)
		},
	}
	statsCmd.Flags().StringVar(&output, "output", "text", "output format: text or json")

	var model string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored embeddings",
		Long:  "Delete stored embeddings for one model key, or all of them when --model is empty.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openCache(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.DeleteModel(cmd.Context(), model)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d embeddings\n", n)
			return nil
		},
	}
	clearCmd.Flags().StringVar(&model, "model", "", "model key to clear (see 'kotae cache stats')")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
