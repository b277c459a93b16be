package main

import (
	"fmt"
	"log/slog"
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
		kong.Name("router"),
		kong.Description("Path-based reverse proxy for services named in SERVICE_CONFIG."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			func() handler.Version { return handler.Version(version) },
			func(cli *config.CLI) (*config.Config, error) {
				return config.Load(cli, config.RouterDefaults())
			},
			server.NewLogger,
			newServices,
			metrics.New,
			server.NewEcho,
			client.NewUpstreamClient,
			service.NewRouterService,
			handler.NewRouterHandler,
			handler.NewOpenIDHandler,
			handler.NewHealthHandler,
		),
		fx.WithLogger(server.NewFxLogger),
		fx.Invoke(handler.RegisterRouterRoutes, server.WarnConfigPermissions, server.Start),
	).Run()
}

func newServices(cfg *config.Config, logger *slog.Logger) *config.Services {
	return config.ServicesFromEnv(os.LookupEnv, cfg.Router.ServicesEnv, logger)
}
