package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/internal/server"
	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/fonts"
	"github.com/matzehuels/timeslice/pkg/observability/prom"
	"github.com/matzehuels/timeslice/pkg/pipeline"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve days, statistics, charts and tasks over a JSON HTTP API.

The server shuts down gracefully on interrupt.`,
		Example: `  timeslice serve --addr :8080
  timeslice serve --storage redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(cfg *config.Loaded, r *pipeline.Runner) error {
				scfg := server.Config{
					Addr:            cfg.Server.Addr,
					ShutdownTimeout: cfg.Server.ShutdownTimeout,
					Chart:           serverChartDefaults(cfg.Chart),
				}
				if addr != "" {
					scfg.Addr = addr
				}
				if metrics {
					m := prom.New()
					m.Install()
					scfg.Metrics = m.Handler()
				}

				printSuccess("Listening on %s", StyleHighlight.Render("http://"+scfg.Addr))
				printDetail("storage: %s", r.Store.Backend())
				if metrics {
					printDetail("metrics: /metrics")
				}
				return server.New(scfg, r, c.Logger).Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose prometheus metrics at /metrics")

	return cmd
}

func serverChartDefaults(cfg config.ChartConfig) server.ChartDefaults {
	d := server.ChartDefaults{
		UnitLabel:   cfg.UnitLabel,
		UnitSuffix:  cfg.UnitSuffix,
		LegendTitle: cfg.LegendTitle,
		Scale:       cfg.Scale,
	}
	font := fonts.Resolve(cfg.Fonts...)
	d.Font = font.Family
	if font.Installed() {
		d.FontFile = font.Path
		d.BoldFontFile = font.Bold()
	}
	return d
}
