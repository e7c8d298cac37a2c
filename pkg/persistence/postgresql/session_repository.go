package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

// SessionRepository handles session rows. The structured pieces of a session
// live in JSONB columns so the schema does not chase the model.
type SessionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessionRepository(db *sql.DB, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

func (sr *SessionRepository) Save(ctx context.Context, session *models.ConversationSession) error {
	specification, err := marshalNullable(session.Specification)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	turns, err := json.Marshal(session.Turns)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	retry, err := marshalNullable(session.Retry)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	workflow, err := marshalNullable(session.Workflow)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	query := `
		INSERT INTO sessions (id, user_id, phase, frozen, specification, turns, retry, workflow, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			phase         = EXCLUDED.phase,
			frozen        = EXCLUDED.frozen,
			specification = EXCLUDED.specification,
			turns         = EXCLUDED.turns,
			retry         = EXCLUDED.retry,
			workflow      = EXCLUDED.workflow,
			updated_at    = EXCLUDED.updated_at
	`

	_, err = sr.db.ExecContext(ctx, query,
		session.ID, session.UserID, string(session.Phase), session.Frozen,
		specification, turns, retry, workflow,
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	return nil
}

func (sr *SessionRepository) GetByID(ctx context.Context, id string) (*models.ConversationSession, error) {
	query := `
		SELECT id, user_id, phase, frozen, specification, turns, retry, workflow, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	session, err := scanSession(sr.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
	}

	if err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	return session, nil
}

func (sr *SessionRepository) GetByUser(ctx context.Context, userID string) ([]*models.ConversationSession, error) {
	query := `
		SELECT id, user_id, phase, frozen, specification, turns, retry, workflow, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := sr.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, persistence.NewSessionError("SessionsByUser", userID, err)
	}
	defer rows.Close()

	sessions := make([]*models.ConversationSession, 0)

	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, persistence.NewSessionError("SessionsByUser", userID, err)
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewSessionError("SessionsByUser", userID, err)
	}

	return sessions, nil
}

func (sr *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := sr.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return persistence.NewSessionError("DeleteSession", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewSessionError("DeleteSession", id, err)
	}

	if affected == 0 {
		return persistence.NewSessionError("DeleteSession", id, persistence.ErrSessionNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.ConversationSession, error) {
	var (
		session       models.ConversationSession
		phase         string
		specification []byte
		turns         []byte
		retry         []byte
		workflow      []byte
	)

	err := row.Scan(&session.ID, &session.UserID, &phase, &session.Frozen,
		&specification, &turns, &retry, &workflow,
		&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	session.Phase = models.Phase(phase)

	if err := json.Unmarshal(turns, &session.Turns); err != nil {
		return nil, fmt.Errorf("decoding turns: %w", err)
	}

	if err := unmarshalNullable(specification, &session.Specification); err != nil {
		return nil, fmt.Errorf("decoding specification: %w", err)
	}

	if err := unmarshalNullable(retry, &session.Retry); err != nil {
		return nil, fmt.Errorf("decoding retry ledger: %w", err)
	}

	if err := unmarshalNullable(workflow, &session.Workflow); err != nil {
		return nil, fmt.Errorf("decoding workflow: %w", err)
	}

	return &session, nil
}

// marshalNullable maps a nil pointer to SQL NULL instead of the JSON literal
// "null".
func marshalNullable[T any](value *T) (any, error) {
	if value == nil {
		return nil, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func unmarshalNullable[T any](data []byte, target **T) error {
	if len(data) == 0 {
		return nil
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return err
	}

	*target = value

	return nil
}
