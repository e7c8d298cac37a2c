package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewPersistence(t.TempDir())

	session := models.NewConversationSession("sess-1", "user-1")
	session.AppendTurn(models.RoleUser, "email me the weekly numbers")
	session.Specification.Integrations = []string{"email"}

	require.NoError(t, store.SaveSession(t.Context(), session))

	loaded, err := store.SessionByID(t.Context(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, models.PhaseGathering, loaded.Phase)
	require.Len(t, loaded.Turns, 1)
	assert.Equal(t, "email me the weekly numbers", loaded.Turns[0].Content)
	assert.Equal(t, []string{"email"}, loaded.Specification.Integrations)
}

func TestSessionByIDNotFound(t *testing.T) {
	store := NewPersistence(t.TempDir())

	_, err := store.SessionByID(t.Context(), "missing")

	assert.True(t, persistence.IsSessionNotFound(err))
}

func TestSessionsByUserFiltersAndSorts(t *testing.T) {
	store := NewPersistence(t.TempDir())

	older := models.NewConversationSession("sess-old", "user-1")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := models.NewConversationSession("sess-new", "user-1")
	other := models.NewConversationSession("sess-other", "user-2")

	for _, session := range []*models.ConversationSession{older, newer, other} {
		require.NoError(t, store.SaveSession(t.Context(), session))
	}

	sessions, err := store.SessionsByUser(t.Context(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-new", sessions[0].ID)
	assert.Equal(t, "sess-old", sessions[1].ID)
}

func TestSessionsByUserEmptyStore(t *testing.T) {
	store := NewPersistence(t.TempDir())

	sessions, err := store.SessionsByUser(t.Context(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteSession(t *testing.T) {
	store := NewPersistence(t.TempDir())

	session := models.NewConversationSession("sess-1", "user-1")
	require.NoError(t, store.SaveSession(t.Context(), session))
	require.NoError(t, store.DeleteSession(t.Context(), "sess-1"))

	_, err := store.SessionByID(t.Context(), "sess-1")
	assert.True(t, persistence.IsSessionNotFound(err))

	assert.True(t, persistence.IsSessionNotFound(store.DeleteSession(t.Context(), "sess-1")))
}

func TestWorkflowRoundTrip(t *testing.T) {
	store := NewPersistence(t.TempDir())

	workflow := &models.Workflow{
		ID:        "wf-1",
		SessionID: "sess-1",
		Name:      "Weekly report",
		Status:    models.WorkflowStatusDraft,
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTriggerSchedule, Category: models.CategoryTypeTrigger},
		},
	}

	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	loaded, err := store.WorkflowByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, models.NodeTypeTriggerSchedule, loaded.Nodes[0].Type)
}

func TestWorkflowsListsAll(t *testing.T) {
	store := NewPersistence(t.TempDir())

	first := &models.Workflow{ID: "wf-1", Name: "First", CreatedAt: time.Now().Add(-time.Hour)}
	second := &models.Workflow{ID: "wf-2", Name: "Second", CreatedAt: time.Now()}
	require.NoError(t, store.SaveWorkflow(t.Context(), second))
	require.NoError(t, store.SaveWorkflow(t.Context(), first))

	workflows, err := store.Workflows(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "wf-1", workflows[0].ID)
}

func TestSaveWorkflowRejectsEmptyID(t *testing.T) {
	store := NewPersistence(t.TempDir())

	err := store.SaveWorkflow(t.Context(), &models.Workflow{Name: "No ID"})

	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	store := NewPersistence(t.TempDir())
	assert.NoError(t, store.HealthCheck(t.Context()))

	missing := NewPersistence("/nonexistent-clixen-root")
	assert.Error(t, missing.HealthCheck(t.Context()))
}
