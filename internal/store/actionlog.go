package store

import "time"

// ActionLogEntry is one row of the append-only action_log table (spec.md
// §4.1, §6): a record of a DSL command that ran, whether it came from a
// direct user command or an AI-generated one, and its outcome.
type ActionLogEntry struct {
	ID        int64
	Origin    string // "user", "ai", or "dsl"
	Prompt    string
	DSL       string
	Error     string
	CreatedAt time.Time
}

// AppendAction inserts a new action_log row. Log writes are append-only:
// there is no update or delete path for this table.
func (s *Store) AppendAction(origin, prompt, dsl, errText string) error {
	return withRetry(func() error {
		_, err := s.db.Exec(
			`INSERT INTO action_log (origin, prompt, dsl, error, created_at) VALUES (?, ?, ?, ?, ?)`,
			origin, prompt, dsl, errText, time.Now().Unix(),
		)
		if err != nil {
			return newErr(KindIO, "append_action", err)
		}
		return nil
	})
}

// ListActions returns the most recent log entries, newest first, capped at
// limit (0 means unbounded).
func (s *Store) ListActions(limit int) ([]ActionLogEntry, error) {
	query := `SELECT id, origin, prompt, dsl, error, created_at FROM action_log ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, newErr(KindIO, "list_actions", err)
	}
	defer rows.Close()

	var entries []ActionLogEntry
	for rows.Next() {
		var e ActionLogEntry
		var createdUnix int64
		if err := rows.Scan(&e.ID, &e.Origin, &e.Prompt, &e.DSL, &e.Error, &createdUnix); err != nil {
			return nil, newErr(KindSchema, "list_actions scan", err)
		}
		e.CreatedAt = time.Unix(createdUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, newErr(KindIO, "list_actions", err)
	}
	return entries, nil
}
