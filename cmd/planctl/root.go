package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dayplanner/backend/internal/app"
	"github.com/dayplanner/backend/internal/config"
)

type cli struct {
	v       *viper.Viper
	output  string
	verbose bool
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New(), out: os.Stdout}

	root := &cobra.Command{
		Use:   "planctl",
		Short: "Run the day planner offline against local files.",
		Long: `planctl runs the scheduler and the visit optimizer without the HTTP server.

Configuration comes from the same environment variables as the server.
Without DATABASE_URL the location catalog is read from --catalog.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.out = cmd.OutOrStdout()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.output, "output", "o", "json", "output format: json or yaml")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")
	flags.String("catalog", "", "location catalog file (YAML or JSON)")
	flags.String("maps-service", "", "travel backend: google, naver, tmap, haversine, mock")
	flags.String("timezone", "", "IANA timezone all times are normalized to")
	_ = c.v.BindPFlag("CATALOG_FILE", flags.Lookup("catalog"))
	_ = c.v.BindPFlag("MAPS_SERVICE", flags.Lookup("maps-service"))
	_ = c.v.BindPFlag("TIMEZONE", flags.Lookup("timezone"))

	root.AddCommand(
		c.buildCmd(),
		c.optimizeCmd(),
		c.suggestCmd(),
		c.statsCmd(),
	)
	return root
}

func (c *cli) logger() zerolog.Logger {
	if !c.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Decode(c.v)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, c.logger())
}

func (c *cli) print(v any) error {
	switch strings.ToLower(c.output) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}
}
