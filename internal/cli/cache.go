package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/cache"
	"github.com/matzehuels/peerpin/pkg/errors"
)

// cacheCommand groups the subcommands that inspect the check-result cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached check results",
		Long: `A clean check is cached under the fingerprint of every manifest and the
settings in effect, so an unchanged workspace is not re-checked. Entries expire
after a day.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all cached check results",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return clearCache() },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	})

	return cmd
}

func clearCache() error {
	dir, err := resolveCacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clear %s", dir)
	}
	printSuccess("Cleared %d cached results", n)
	printDetail("%s", fc.Dir())
	return nil
}

func resolveCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate cache directory")
	}
	return dir, nil
}
