package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richinsley/pylocate/internal/cache"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the interpreter cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached interpreter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd, root)
			if err != nil {
				return err
			}
			if err := cache.New(s.CacheDir).Clear(); err != nil {
				if errors.Is(err, cache.ErrNoDirectory) {
					return errors.New("no cache directory configured, pass --cache-directory")
				}
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), countStyle.Render("Cleared")+" "+s.CacheDir)
			return nil
		},
	})
	return cmd
}
