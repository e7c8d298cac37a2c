package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

// SessionRepository stores each conversation session as one JSON file under
// <root>/sessions.
type SessionRepository struct {
	root string
}

func NewSessionRepository(root string) *SessionRepository {
	return &SessionRepository{root: root}
}

func (sr *SessionRepository) dir() string {
	return filepath.Join(sr.root, "sessions")
}

func (sr *SessionRepository) path(id string) string {
	return filepath.Join(sr.dir(), id+".json")
}

func (sr *SessionRepository) Save(_ context.Context, session *models.ConversationSession) error {
	if session.ID == "" {
		return persistence.NewSessionError("SaveSession", session.ID, fmt.Errorf("session id is empty"))
	}

	if err := os.MkdirAll(sr.dir(), 0o755); err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	if err := os.WriteFile(sr.path(session.ID), data, 0o600); err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	return nil
}

func (sr *SessionRepository) GetByID(_ context.Context, id string) (*models.ConversationSession, error) {
	data, err := os.ReadFile(sr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	var session models.ConversationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	return &session, nil
}

func (sr *SessionRepository) GetByUser(ctx context.Context, userID string) ([]*models.ConversationSession, error) {
	root := os.DirFS(sr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, persistence.NewSessionError("SessionsByUser", userID, err)
	}

	sessions := make([]*models.ConversationSession, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		session, err := sr.GetByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}

func (sr *SessionRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(sr.path(id))
	if os.IsNotExist(err) {
		return persistence.NewSessionError("DeleteSession", id, persistence.ErrSessionNotFound)
	}

	if err != nil {
		return persistence.NewSessionError("DeleteSession", id, err)
	}

	return nil
}
