// Command clixen-chat runs the conversation pipeline as a terminal chat.
// It wires the same components as the API server, minus the HTTP surface,
// so a workflow can be described, generated, and deployed from a shell.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/intelogroup/clixen/pkg/cmd"
	"github.com/intelogroup/clixen/pkg/conversation"
	"github.com/intelogroup/clixen/pkg/deploy"
	"github.com/intelogroup/clixen/pkg/extraction"
	"github.com/intelogroup/clixen/pkg/feasibility"
	"github.com/intelogroup/clixen/pkg/generator"
	"github.com/intelogroup/clixen/pkg/intent"
	"github.com/intelogroup/clixen/pkg/log"
	"github.com/intelogroup/clixen/pkg/recovery"
	"github.com/intelogroup/clixen/pkg/validation"
)

func main() {
	logger := log.WithModule("chat")

	command := &cli.Command{
		Name:                  "clixen-chat",
		Usage:                 "Describe a workflow in plain language and deploy it",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User identifier for the session",
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
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
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			return runChat(ctx, command)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Chat session failed", "error", err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("chat")

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), "")
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	client, err := cmd.NewLLMClient(ctx,
		command.String("llm-provider"),
		command.String("llm-model"),
		command.String("llm-api-key"),
		command.String("llm-base-url"),
		nil,
	)
	if err != nil {
		return err
	}

	catalog := cmd.NewRegistry(logger)

	aggregator, err := validation.NewAggregator(logger)
	if err != nil {
		return err
	}

	var deployer deploy.Deployer = deploy.NopDeployer{}
	if engineURL := command.String("engine-url"); engineURL != "" {
		deployer = deploy.NewEngineClient(engineURL, command.String("engine-api-key"), logger)
	}

	model := command.String("llm-model")

	service := conversation.NewService(conversation.Config{
		Classifier: intent.NewKeywordClassifier(),
		Extractor:  extraction.NewExtractor(client, model),
		Assessor:   feasibility.NewAssessor(catalog, logger),
		Generator:  generator.NewGenerator(client, catalog, logger, model),
		Validator:  aggregator,
		Recovery:   recovery.NewCoordinator(catalog, logger),
		Deployer:   deployer,
		Store:      store,
		Registry:   catalog,
		Logger:     logger,
	})

	reply, err := service.StartConversation(ctx, command.String("user"))
	if err != nil {
		return err
	}

	fmt.Println("clixen> " + reply.Message)
	fmt.Println("(type \"exit\" to quit)")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err = service.ProcessMessage(ctx, reply.SessionID, line)
		if err != nil {
			return err
		}

		fmt.Println("clixen> " + reply.Message)

		for _, question := range reply.Questions {
			fmt.Println("  - " + question)
		}

		if reply.Receipt != nil && reply.Receipt.Endpoint != "" {
			fmt.Println("  endpoint: " + reply.Receipt.Endpoint)
		}
	}
}
