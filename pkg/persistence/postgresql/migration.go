package postgresql

// migrations returns the ordered schema migrations for the conversation store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS sessions (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL,
				phase         TEXT NOT NULL,
				frozen        BOOLEAN NOT NULL DEFAULT FALSE,
				specification JSONB,
				turns         JSONB NOT NULL DEFAULT '[]'::jsonb,
				retry         JSONB,
				workflow      JSONB,
				created_at    TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at    TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS workflows (
				id          TEXT PRIMARY KEY,
				session_id  TEXT,
				name        TEXT NOT NULL,
				description TEXT,
				status      TEXT NOT NULL,
				owner       TEXT,
				nodes       JSONB NOT NULL DEFAULT '[]'::jsonb,
				connections JSONB NOT NULL DEFAULT '[]'::jsonb,
				metadata    JSONB,
				created_at  TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at  TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_session_id ON workflows (session_id);
			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
		`,
	}
}
