package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	app "github.com/rocketscienceinc/tictactoe-hotseat/internal"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
)

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cliApp := &cli.App{
		Name:  "tictactoe",
		Usage: "two-player tic-tac-toe",
		Commands: []*cli.Command{
			serveCommand(),
			playCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the REST and WebSocket servers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.yml; environment only when empty",
				Value:   "config.yml",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: func(c *cli.Context) error {
			conf := initConfig(c.String("config"))
			logger := initLogger(conf)

			if err := app.RunApp(c.Context, logger, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a hot-seat game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "p1", Usage: "name of player one", Value: "Player 1"},
			&cli.StringFlag{Name: "p2", Usage: "name of player two", Value: "Player 2"},
		},
		Action: func(c *cli.Context) error {
			return app.RunLocal(c.String("p1"), c.String("p2"))
		},
	}
}

// initialize config. A missing file falls back to environment variables.
func initConfig(path string) *config.Config {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return config.MustLoad(path)
		}
	}

	conf, err := config.LoadEnv()
	if err != nil {
		panic(err)
	}

	return conf
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
