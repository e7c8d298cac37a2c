package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/intelogroup/clixen/pkg/cmd"
	"github.com/intelogroup/clixen/pkg/log"
	"github.com/intelogroup/clixen/pkg/otelhelper"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "clixen-api",
		Usage:                 "Turn conversations into deployed workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the session cache (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "llm-provider",
				Usage:   "Completion provider (openai, gemini, stub)",
				Value:   "openai",
				Sources: cli.EnvVars("LLM_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Model identifier for the completion provider",
				Sources: cli.EnvVars("LLM_MODEL"),
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Usage:   "API key for the completion provider",
				Sources: cli.EnvVars("LLM_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "llm-base-url",
				Usage:   "Base URL override for OpenAI-compatible providers",
				Sources: cli.EnvVars("LLM_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "engine-url",
				Usage:   "Execution engine base URL; empty keeps deployments local",
				Sources: cli.EnvVars("ENGINE_URL"),
			},
			&cli.StringFlag{
				Name:    "engine-api-key",
				Usage:   "API key for the execution engine",
				Sources: cli.EnvVars("ENGINE_API_KEY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Clixen API")

			var tracer trace.Tracer

			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, "clixen-api")
				if err != nil {
					return err
				}
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), command.String("redis-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			client, err := cmd.NewLLMClient(ctx,
				command.String("llm-provider"),
				command.String("llm-model"),
				command.String("llm-api-key"),
				command.String("llm-base-url"),
				tracer,
			)
			if err != nil {
				return err
			}

			api, err := NewAPI(logger, store, eventBus, client, APIConfig{
				Model:        command.String("llm-model"),
				EngineURL:    command.String("engine-url"),
				EngineAPIKey: command.String("engine-api-key"),
				Tracer:       tracer,
			})
			if err != nil {
				return err
			}

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
