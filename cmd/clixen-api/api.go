// Package main provides the Clixen API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/intelogroup/clixen/pkg/cmd"
	"github.com/intelogroup/clixen/pkg/conversation"
	"github.com/intelogroup/clixen/pkg/deploy"
	"github.com/intelogroup/clixen/pkg/eventbus"
	"github.com/intelogroup/clixen/pkg/extraction"
	"github.com/intelogroup/clixen/pkg/feasibility"
	"github.com/intelogroup/clixen/pkg/generator"
	"github.com/intelogroup/clixen/pkg/intent"
	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/recovery"
	"github.com/intelogroup/clixen/pkg/registry"
	"github.com/intelogroup/clixen/pkg/validation"
	"github.com/intelogroup/clixen/pkg/web"
)

// APIConfig carries the settings that shape the pipeline wiring.
type APIConfig struct {
	Model        string
	EngineURL    string
	EngineAPIKey string
	Tracer       trace.Tracer
}

type API struct {
	logger   *slog.Logger
	store    persistence.Persistence
	registry *registry.Registry
	service  *conversation.Service
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	client llm.Client,
	config APIConfig,
) (*API, error) {
	catalog := cmd.NewRegistry(logger)

	aggregator, err := validation.NewAggregator(logger)
	if err != nil {
		return nil, err
	}

	var deployer deploy.Deployer = deploy.NopDeployer{}
	if config.EngineURL != "" {
		deployer = deploy.NewEngineClient(config.EngineURL, config.EngineAPIKey, logger)
	}

	service := conversation.NewService(conversation.Config{
		Classifier: intent.NewKeywordClassifier(),
		Extractor:  extraction.NewExtractor(client, config.Model),
		Assessor:   feasibility.NewAssessor(catalog, logger),
		Generator:  generator.NewGenerator(client, catalog, logger, config.Model),
		Validator:  aggregator,
		Recovery:   recovery.NewCoordinator(catalog, logger),
		Deployer:   deployer,
		Store:      store,
		Publisher:  eventBus,
		Registry:   catalog,
		Tracer:     config.Tracer,
		Logger:     logger,
	})

	return &API{
		logger:   logger,
		store:    store,
		registry: catalog,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.service, a.store, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Clixen API")
	})

	conversations := app.Group("/conversations")
	conversations.Post("/", handlers.StartConversation)
	conversations.Get("/:id", handlers.GetSession)
	conversations.Post("/:id/messages", handlers.PostMessage)
	conversations.Post("/:id/reset", handlers.ResetSession)

	workflows := app.Group("/workflows")
	workflows.Get("/", handlers.GetWorkflows)
	workflows.Get("/:id", handlers.GetWorkflow)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
