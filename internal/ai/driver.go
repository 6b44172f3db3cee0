package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/revel/internal/config"
	"github.com/xonecas/revel/internal/dsl"
	"github.com/xonecas/revel/internal/store"
	"github.com/xonecas/revel/internal/undo"
)

// maxAttempts bounds the type-check-and-retry loop (spec.md §4.8 step 4:
// "up to 3 total attempts").
const maxAttempts = 3

// TurnResult is what a completed AI turn produced: the DSL that was
// ultimately sent to the runtime (or the last failed attempt), whether it
// was applied, and any error surfaced to the user.
type TurnResult struct {
	DSL       string
	Applied   bool
	Error     string
	Attempts  int
	Truncated bool
}

// Driver runs the full AI collaborator turn described by spec.md §4.8:
// build payload, spawn the provider, sanitize its output, type-check and
// retry, execute on success, roll back a no-op result, and persist the
// turn either way.
type Driver struct {
	Registry *Registry
	Store    *store.Store
	Settings config.AISettings
	Session  *Session
	Runtime  *dsl.Runtime
	Undo     *undo.Manager
}

// RunTurn drives one (prompt -> DSL -> applied-or-rolled-back) exchange
// against the currently selected provider.
func (d *Driver) RunTurn(ctx context.Context, prompt string) (TurnResult, error) {
	prov, err := d.Registry.Create(d.Settings.SelectedProvider, d.Settings.CLIPaths[d.Settings.SelectedProvider])
	if err != nil {
		return TurnResult{}, err
	}

	snapshot := RenderSpaceDSL(d.Runtime.Graph, d.Runtime.SpaceID)
	opts := PayloadOptions{
		MaxContextBytes: d.Settings.MaxContextBytes,
		HistoryLimit:    d.Settings.HistoryLimit,
		IncludeGrammar:  d.Settings.IncludeGrammar,
	}
	timeout := time.Duration(d.Settings.TimeoutMs) * time.Millisecond

	undoBefore := d.Undo.Len()
	var retryErr, candidate string
	var truncated bool
	attempts := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		payload, trunc := BuildPayload(snapshot, d.Session, prompt, retryErr, opts)
		truncated = truncated || trunc

		raw, runErr := prov.Run(ctx, timeout, payload)
		if runErr != nil {
			d.persist(prompt, "", runErr.Error())
			return TurnResult{Error: runErr.Error(), Attempts: attempts, Truncated: truncated}, nil
		}
		candidate = Sanitize(raw)

		result, execErr := dsl.RunScript(fmt.Sprintf("ai-turn-%d", attempt), candidate, d.Runtime)
		if execErr != nil {
			retryErr = execErr.Error()
		} else if !result.OK() {
			retryErr = result.FormatErrors()
		} else {
			retryErr = ""
		}

		if retryErr == "" {
			break
		}
		log.Info().Int("attempt", attempt).Str("error", retryErr).Msg("ai: attempt failed type check, retrying")
	}

	if retryErr != "" {
		d.persist(prompt, candidate, retryErr)
		return TurnResult{DSL: candidate, Error: retryErr, Attempts: attempts, Truncated: truncated}, nil
	}

	undoAfter := d.Undo.Len()
	if undoAfter <= undoBefore {
		d.Undo.RollbackTo(undoBefore)
		const noop = "AI script executed but made no changes; rolled back"
		d.persist(prompt, candidate, noop)
		return TurnResult{DSL: candidate, Error: noop, Attempts: attempts, Truncated: truncated}, nil
	}

	d.persist(prompt, candidate, "")
	return TurnResult{DSL: candidate, Applied: true, Attempts: attempts, Truncated: truncated}, nil
}

// persist records the turn to both the append-only action log (spec.md
// §4.1, §6) and the bounded in-memory session.
func (d *Driver) persist(prompt, dslText, errText string) {
	if err := d.Store.AppendAction("ai", prompt, dslText, errText); err != nil {
		log.Warn().Err(err).Msg("ai: failed to append action log entry")
	}
	d.Session.Append(Turn{Prompt: prompt, DSL: dslText, Error: errText, CreatedAt: time.Now()})
}
