package ai

import (
	"time"

	"github.com/xonecas/revel/internal/store"
)

// historyRestoreMultiplier and historyRestoreFloor set how many past turns
// get loaded back into memory on startup, relative to the configured
// in-conversation history_limit (spec.md §4.8: "Retains a bounded
// in-memory session log (N x 5, floor 20)").
const (
	historyRestoreMultiplier = 5
	historyRestoreFloor      = 20
	historyPruneAfter        = 7 * 24 * time.Hour
)

// Turn is one AI exchange: the prompt sent, the DSL that was ultimately
// accepted (or the last attempt, if every retry failed), and any error
// from the final attempt.
type Turn struct {
	Prompt    string
	DSL       string
	Error     string
	CreatedAt time.Time
}

// Session holds the AI driver's in-memory conversation history for the
// active provider. It is bounded separately from the store's append-only
// action_log: the log never shrinks, this does.
type Session struct {
	Provider string
	turns    []Turn
	capacity int
}

// NewSession creates an empty session capped per historyRestoreMultiplier/
// historyRestoreFloor against historyLimit.
func NewSession(historyLimit int) *Session {
	return &Session{capacity: restoreCap(historyLimit)}
}

func restoreCap(historyLimit int) int {
	n := historyLimit * historyRestoreMultiplier
	if n < historyRestoreFloor {
		n = historyRestoreFloor
	}
	return n
}

// Append records a turn, evicting the oldest if the session is at capacity.
func (s *Session) Append(t Turn) {
	s.turns = append(s.turns, t)
	if over := len(s.turns) - s.capacity; over > 0 {
		s.turns = s.turns[over:]
	}
}

// Recent returns the last n turns, oldest first (n <= 0 means all
// retained turns).
func (s *Session) Recent(n int) []Turn {
	if n <= 0 || n >= len(s.turns) {
		return s.turns
	}
	return s.turns[len(s.turns)-n:]
}

// RestoreFromLog repopulates a fresh Session from the store's action_log,
// keeping only AI-origin entries from the last historyPruneAfter and at
// most the session's capacity of them — grounded on the original
// implementation's ai_runtime_restore_history, which prunes stale AI
// entries from the log and replays the rest into the in-memory session on
// startup.
func RestoreFromLog(st *store.Store, historyLimit int) (*Session, error) {
	sess := NewSession(historyLimit)

	entries, err := st.ListActions(0)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-historyPruneAfter)

	// ListActions returns newest-first; walk in reverse to append oldest-first.
	var kept []Turn
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Origin != "ai" {
			continue
		}
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, Turn{Prompt: e.Prompt, DSL: e.DSL, Error: e.Error, CreatedAt: e.CreatedAt})
	}
	for _, t := range kept {
		sess.Append(t)
	}
	return sess, nil
}
