package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gamepulse/internal/app"
	"gamepulse/internal/config"
	"gamepulse/internal/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gamepulse",
		Usage: "Gaming news landing page and the feed service behind it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "path to the JSON config file",
				EnvVars: []string{"GAMEPULSE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			renderCmd(),
			feedsCmd(),
		},
	}
}

func apiBaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "api-base",
		Usage:   "base URL of the feed service",
		EnvVars: []string{"GAMEPULSE_API_BASE"},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the landing page; every request renders both sections afresh",
		Flags: []cli.Flag{
			apiBaseFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address of the landing server",
				EnvVars: []string{"GAMEPULSE_ADDR"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, appLogger, err := setupLanding(c)
			if err != nil {
				return err
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Landing.Address = addr
			}
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.NewLanding(cfg, appLogger).Run(ctx)
		},
	}
}

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Load the landing page once and write the HTML to stdout or a file",
		Flags: []cli.Flag{
			apiBaseFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file; stdout when empty",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, appLogger, err := setupLanding(c)
			if err != nil {
				return err
			}
			var w io.Writer = c.App.Writer
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}
			return app.NewLanding(cfg, appLogger).RenderOnce(c.Context, w)
		},
	}
}

func feedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "feeds",
		Usage: "Run the feed service: RSS ingestion into PostgreSQL and the JSON API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"), false)
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			appLogger, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			svc, err := app.NewFeedService(ctx, cfg, appLogger)
			if err != nil {
				return err
			}
			return svc.Run(ctx)
		},
	}
}

// setupLanding загружает конфигурацию лендинга. Файл конфигурации необязателен.
func setupLanding(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"), !c.IsSet("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	if base := c.String("api-base"); base != "" {
		cfg.Landing.APIBaseURL = base
	}
	if err := cfg.ValidateLanding(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	appLogger, err := setupLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, appLogger, nil
}

func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("could not setup logger: %w", err)
	}
	slog.SetDefault(appLogger)
	return appLogger, nil
}
