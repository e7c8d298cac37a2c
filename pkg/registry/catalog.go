package registry

import (
	"log/slog"

	"github.com/intelogroup/clixen/pkg/models"
)

// NewBuiltinRegistry returns a registry pre-loaded with the builtin catalog.
func NewBuiltinRegistry(logger *slog.Logger) *Registry {
	registry := NewRegistry(logger)
	for _, def := range BuiltinCatalog() {
		registry.Register(def)
	}

	return registry
}

// BuiltinCatalog returns the definitions for the node types the managed
// execution engine ships with. Availability reflects the engine defaults;
// operators can override individual entries after registration.
func BuiltinCatalog() []Definition {
	return []Definition{
		{
			Type:        models.NodeTypeTriggerWebhook,
			Name:        "Webhook Trigger",
			Category:    models.CategoryTypeTrigger,
			Description: "Starts the workflow when an HTTP request arrives",
			Available:   true,
			Schema: &models.JSONSchema{
				Type:     "object",
				Required: []string{"path"},
				Properties: map[string]*models.Property{
					"path":   {Type: "string", Description: "Webhook path"},
					"method": {Type: "string", Enum: []any{"GET", "POST", "PUT"}, Default: "POST"},
				},
			},
		},
		{
			Type:        models.NodeTypeTriggerSchedule,
			Name:        "Schedule Trigger",
			Category:    models.CategoryTypeTrigger,
			Description: "Starts the workflow on a cron schedule",
			Available:   true,
			Schema: &models.JSONSchema{
				Type:     "object",
				Required: []string{"cron"},
				Properties: map[string]*models.Property{
					"cron":     {Type: "string", Description: "Standard five-field cron expression"},
					"timezone": {Type: "string", Default: "UTC"},
				},
			},
		},
		{
			Type:        models.NodeTypeTriggerManual,
			Name:        "Manual Trigger",
			Category:    models.CategoryTypeTrigger,
			Description: "Starts the workflow on explicit user request",
			Available:   true,
		},
		{
			Type:        "http_request",
			Name:        "HTTP Request",
			Category:    models.CategoryTypeAction,
			Description: "Calls an external HTTP endpoint",
			Available:   true,
			Schema: &models.JSONSchema{
				Type:     "object",
				Required: []string{"url"},
				Properties: map[string]*models.Property{
					"url":    {Type: "string", Format: "uri"},
					"method": {Type: "string", Default: "GET"},
				},
			},
		},
		{
			Type:        "slack",
			Name:        "Slack Message",
			Category:    models.CategoryTypeAction,
			Description: "Posts a message to a Slack channel",
			Integration: "slack",
			Available:   true,
			Substitutes: []string{"http_request"},
			Schema: &models.JSONSchema{
				Type:     "object",
				Required: []string{"channel", "message"},
				Properties: map[string]*models.Property{
					"channel": {Type: "string"},
					"message": {Type: "string"},
				},
			},
		},
		{
			Type:        "email",
			Name:        "Send Email",
			Category:    models.CategoryTypeAction,
			Description: "Sends an email through the configured provider",
			Integration: "email",
			Available:   true,
			Substitutes: []string{"http_request"},
			Schema: &models.JSONSchema{
				Type:     "object",
				Required: []string{"to", "subject"},
				Properties: map[string]*models.Property{
					"to":      {Type: "string", Format: "email"},
					"subject": {Type: "string"},
					"body":    {Type: "string"},
				},
			},
		},
		{
			Type:        "google_sheets",
			Name:        "Google Sheets",
			Category:    models.CategoryTypeAction,
			Description: "Appends or reads rows in a spreadsheet",
			Integration: "google_sheets",
			Available:   true,
			Substitutes: []string{"http_request"},
		},
		{
			Type:        "transform",
			Name:        "Transform",
			Category:    models.CategoryTypeAction,
			Description: "Reshapes data between nodes",
			Available:   true,
		},
		{
			Type:        "filter",
			Name:        "Filter",
			Category:    models.CategoryTypeAction,
			Description: "Drops items that do not match a condition",
			Available:   true,
		},
		{
			Type:        "noop",
			Name:        "No Operation",
			Category:    models.CategoryTypeAction,
			Description: "Passes data through unchanged",
			Available:   true,
		},
	}
}
