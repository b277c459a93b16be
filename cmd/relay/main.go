package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"

	"relay-proxy-go/internal/client"
	"relay-proxy-go/internal/config"
	"relay-proxy-go/internal/handler"
	"relay-proxy-go/internal/metrics"
	"relay-proxy-go/internal/server"
	"relay-proxy-go/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Before flag parsing, so dotenv values reach env-backed flags.
	if err := config.LoadDotenv(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("relay"),
		kong.Description("Relays one caller-described HTTP request to an arbitrary URL."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			func() handler.Version { return handler.Version(version) },
			func(cli *config.CLI) (*config.Config, error) {
				return config.Load(cli, config.RelayDefaults())
			},
			server.NewLogger,
			metrics.New,
			server.NewEcho,
			client.NewUpstreamClient,
			service.NewRelayService,
			handler.NewRelayHandler,
			func(cfg *config.Config, v handler.Version) *handler.HealthHandler {
				return handler.NewHealthHandler(cfg, v, nil)
			},
		),
		fx.WithLogger(server.NewFxLogger),
		fx.Invoke(handler.RegisterRelayRoutes, server.WarnConfigPermissions, server.Start),
	).Run()
}
