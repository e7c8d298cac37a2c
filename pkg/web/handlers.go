// Package web provides the HTTP API for driving conversations and
// inspecting generated workflows.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/intelogroup/clixen/pkg/conversation"
	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/registry"
)

type APIHandlers struct {
	service   *conversation.Service
	store     persistence.Persistence
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	service *conversation.Service,
	store persistence.Persistence,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		service:   service,
		store:     store,
		validator: validator,
		registry:  registry,
	}
}

func (h *APIHandlers) StartConversation(c fiber.Ctx) error {
	var req StartConversationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	reply, err := h.service.StartConversation(c.Context(), req.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (h *APIHandlers) PostMessage(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req PostMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	reply, err := h.service.ProcessMessage(c.Context(), id, req.Message)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(reply)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	session, err := h.service.Session(c.Context(), id)
	if err != nil {
		if persistence.IsSessionNotFound(err) {
			return notFound(c, "Conversation session not found")
		}

		return internalError(c, err)
	}

	return c.JSON(TransformSessionResponse(session))
}

func (h *APIHandlers) ResetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	reply, err := h.service.Reset(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(reply)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	repositoryCheck := "ok"
	repOk := true

	if err := h.store.HealthCheck(c.Context()); err != nil {
		repositoryCheck = err.Error()
		repOk = false
	}

	status := "unhealthy"
	message := "Clixen API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Clixen API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
