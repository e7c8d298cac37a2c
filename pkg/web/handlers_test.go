package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelogroup/clixen/pkg/conversation"
	"github.com/intelogroup/clixen/pkg/deploy"
	"github.com/intelogroup/clixen/pkg/feasibility"
	"github.com/intelogroup/clixen/pkg/intent"
	"github.com/intelogroup/clixen/pkg/log"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/persistence/file"
	"github.com/intelogroup/clixen/pkg/recovery"
	"github.com/intelogroup/clixen/pkg/registry"
	"github.com/intelogroup/clixen/pkg/web"
)

type stubExtractor struct{}

func (stubExtractor) Extract(context.Context, string, []models.Turn) (*models.Specification, error) {
	spec := models.NewSpecification()
	spec.Trigger = models.TriggerSpec{Type: "schedule", Description: "every morning", Parameters: map[string]any{"cron": "0 9 * * *"}}
	spec.Actions = []models.ActionSpec{{Type: "email", Description: "send the report"}}
	spec.Integrations = []string{"email"}

	return spec, nil
}

type stubAssessor struct{}

func (stubAssessor) Assess(context.Context, *models.Specification) feasibility.Report {
	return feasibility.Report{Score: 95, Feasible: true}
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, *models.Specification) (*models.Workflow, error) {
	return &models.Workflow{
		ID:     "wf-api-1",
		Name:   "Morning report",
		Status: models.WorkflowStatusDraft,
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTriggerSchedule, Category: models.CategoryTypeTrigger},
			{ID: "a1", Type: "email", Category: models.CategoryTypeAction},
		},
		Connections: []*models.Connection{{ID: "c1", Source: "t1", Target: "a1"}},
	}, nil
}

type stubValidator struct{}

func (stubValidator) Validate(context.Context, *models.Workflow) models.ValidationVerdict {
	return models.ValidationVerdict{Valid: true, Score: 100, Structural: 100, Performance: 100, Security: 100}
}

func setupTestApp(t *testing.T) (*fiber.App, persistence.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	catalog := registry.NewBuiltinRegistry(log.WithModule("registry_test"))

	service := conversation.NewService(conversation.Config{
		Classifier: intent.NewKeywordClassifier(),
		Extractor:  stubExtractor{},
		Assessor:   stubAssessor{},
		Generator:  stubGenerator{},
		Validator:  stubValidator{},
		Recovery:   recovery.NewCoordinator(catalog, log.WithModule("recovery_test")),
		Deployer:   deploy.NopDeployer{},
		Store:      store,
		Registry:   catalog,
		Logger:     log.WithModule("web_test"),
	})

	handlers := web.NewAPIHandlers(service, store, validator.New(validator.WithRequiredStructEnabled()), catalog)

	app := fiber.New()
	app.Get("/health", handlers.HealthCheck)

	conversations := app.Group("/conversations")
	conversations.Post("/", handlers.StartConversation)
	conversations.Get("/:id", handlers.GetSession)
	conversations.Post("/:id/messages", handlers.PostMessage)
	conversations.Post("/:id/reset", handlers.ResetSession)

	workflows := app.Group("/workflows")
	workflows.Get("/", handlers.GetWorkflows)
	workflows.Get("/:id", handlers.GetWorkflow)

	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeReply(t *testing.T, resp *http.Response) conversation.Reply {
	t.Helper()

	var reply conversation.Reply

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &reply))

	return reply
}

func TestStartConversation(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/conversations/", map[string]string{"user_id": "user-1"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	reply := decodeReply(t, resp)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, models.PhaseGathering, reply.Phase)
	assert.Contains(t, reply.Message, "automate")
}

func TestStartConversationRequiresUserID(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/conversations/", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostMessageAdvancesConversation(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	start := decodeReply(t, postJSON(t, app, "/conversations/", map[string]string{"user_id": "user-1"}))

	resp := postJSON(t, app, "/conversations/"+start.SessionID+"/messages",
		map[string]string{"message": "email me the signup report every morning"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	reply := decodeReply(t, resp)
	assert.Equal(t, models.PhaseConfirming, reply.Phase)
	assert.Contains(t, reply.Message, "Shall I build it?")
}

func TestPostMessageUnknownSession(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/conversations/nope/messages", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostMessageRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	start := decodeReply(t, postJSON(t, app, "/conversations/", map[string]string{"user_id": "user-1"}))

	resp := postJSON(t, app, "/conversations/"+start.SessionID+"/messages", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSessionReturnsTranscript(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	start := decodeReply(t, postJSON(t, app, "/conversations/", map[string]string{"user_id": "user-1"}))

	postJSON(t, app, "/conversations/"+start.SessionID+"/messages",
		map[string]string{"message": "email me the report every morning"})

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+start.SessionID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var session web.SessionResponse

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &session))

	assert.Equal(t, start.SessionID, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, models.PhaseConfirming, session.Phase)
	require.NotNil(t, session.Specification)
	assert.GreaterOrEqual(t, len(session.Turns), 3)
}

func TestGetSessionNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/conversations/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResetSession(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	start := decodeReply(t, postJSON(t, app, "/conversations/", map[string]string{"user_id": "user-1"}))

	postJSON(t, app, "/conversations/"+start.SessionID+"/messages",
		map[string]string{"message": "email me the report every morning"})

	resp := postJSON(t, app, "/conversations/"+start.SessionID+"/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	reply := decodeReply(t, resp)
	assert.Equal(t, models.PhaseGathering, reply.Phase)
}

func TestWorkflowEndpoints(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Workflows  []*models.Workflow `json:"workflows"`
		TotalCount int                `json:"total_count"`
	}

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, 0, listing.TotalCount)

	workflow := &models.Workflow{
		ID:     "wf-stored",
		Name:   "Stored workflow",
		Status: models.WorkflowStatusValid,
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTriggerManual, Category: models.CategoryTypeTrigger},
		},
	}
	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	req = httptest.NewRequest(http.MethodGet, "/workflows/wf-stored", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow

	data, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, "Stored workflow", fetched.Name)

	req = httptest.NewRequest(http.MethodGet, "/workflows/missing", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health["status"])
}