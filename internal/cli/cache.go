package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtrack/internal/config"
	"github.com/matzehuels/pkgtrack/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the upstream response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached upstream responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			switch cfg.Cache.Backend {
			case config.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case config.BackendMemory:
				printInfo("The memory cache lives only as long as a single command")
				return nil
			}

			backing, err := newBacking(ctx, cfg)
			if err != nil {
				return err
			}
			defer backing.Close()

			flusher, ok := backing.(cache.Flusher)
			if !ok {
				return fmt.Errorf("%s cache cannot be flushed", cfg.Cache.Backend)
			}
			prefix := newKeyer(cfg).Prefix()
			n, err := flusher.Flush(ctx, prefix)
			if err != nil {
				return fmt.Errorf("flush cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Prefix: %s", prefix)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the cache configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue("Backend", cfg.Cache.Backend)
			if cfg.Cache.Backend == config.BackendRedis {
				printKeyValue("Redis", cfg.Cache.RedisURL)
			}
			printKeyValue("TTL", cfg.Cache.TTL.String())
			printKeyValue("Prefix", newKeyer(cfg).Prefix())
			return nil
		},
	}
}
