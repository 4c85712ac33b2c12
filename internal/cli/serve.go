package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtrack/internal/metrics"
	"github.com/matzehuels/pkgtrack/internal/server"
	"github.com/matzehuels/pkgtrack/pkg/querysync"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	addr        string
	cors        []string
	query       string
	noMetrics   bool
	slowRequest time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [package...]",
		Short: "Serve the tracking store over a JSON HTTP API",
		Long: `Start an HTTP server exposing the tracking store.

Packages given as arguments or via --query are tracked at startup.
Prometheus metrics are served at /metrics unless --no-metrics is set.`,
		Example: `  pkgtrack serve --addr :9000 react vue
  pkgtrack serve --cors http://localhost:5173`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			names := tracker.NormalizeAll(append(querysync.Parse(opts.query), args...))
			return c.runServe(ctx, querysync.Build(opts.query, names), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringSliceVar(&opts.cors, "cors", nil, "allowed CORS origins (overrides config)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "shared query string to load packages from")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().DurationVar(&opts.slowRequest, "slow-request", 2*time.Second, "log requests slower than this at warn level")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, query string, opts serveOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if len(opts.cors) > 0 {
		cfg.Server.CORSOrigins = opts.cors
	}

	srvOpts := server.Options{
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		SlowRequest: opts.slowRequest,
		Logger:      c.Logger,
	}
	if !opts.noMetrics {
		m := metrics.New()
		m.Register()
		srvOpts.Metrics = m.Handler()
	}

	rt, err := newRuntime(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer rt.close()

	loc := querysync.NewMemoryLocation(query)
	stop, err := querysync.Sync(ctx, rt.store, loc)
	if err != nil {
		return err
	}
	defer stop()

	srvOpts.Store = rt.store
	srvOpts.Location = loc
	srv := server.New(srvOpts)

	c.Logger.Info("serving", "addr", srv.Addr(), "backend", cfg.Cache.Backend, "packages", len(rt.store.State().Packages))
	return srv.Run(ctx)
}
