package ai

import "strings"

// grammarSnippet is a compact reminder of the DSL's command surface,
// included in the payload only when the session's include_grammar
// setting is on (spec.md §4.8 step 1's "optional grammar snippet"; the
// setting itself lives in internal/config.AISettings.IncludeGrammar).
const grammarSnippet = `DSL commands (one statement per line):
  note_create <id> "<text>" (x,y) (w,h)
  paper_note_create <id> "<text>" (x,y) (w,h)
  text_create <id> "<text>" (x,y) (w,h)
  shape_create <id> <rectangle|circle|diamond|line|arrow|bezier> "<text>" (x,y) (w,h) [options]
  image_create|video_create|audio_create <id> "<path>" (x,y) (w,h)
  space_create <id> "<name>" (x,y) (w,h)
  connect <id> <id>
  element_delete <id>
  text_update <id> "<text or ${expr}>"
  animate_move|animate_resize <id> (from) (to) start_time duration [interpolation]
  animate_rotate|animate_color <id> from to start_time duration [interpolation]
  animate_appear|animate_disappear|animate_create|animate_delete <id> start_time duration [interpolation]
  canvas_background "<hex>" ["<hex>"]
  presentation_next
  presentation_auto_next_if <var> <value>
  int|real|bool|string <name> [value]   int|real <name>[size]   global <decl>
  set <name> <expr>
  on click <id> ... end
  on variable <name> ... end
  for <var> <start> <end> ... end
  text_bind <id> <var>   position_bind <id> <var_array>
`

// PayloadOptions configures BuildPayload, mirroring internal/config's
// AISettings fields that affect prompt shape.
type PayloadOptions struct {
	MaxContextBytes int
	HistoryLimit    int
	IncludeGrammar  bool
}

// BuildPayload assembles the text sent to a provider's subprocess
// (spec.md §4.8 step 1): an optional grammar snippet, the truncated
// current-space snapshot as DSL, the last N (prompt, response) turns, the
// retry error (if any), and the user's prompt.
func BuildPayload(snapshot string, sess *Session, prompt, retryError string, opts PayloadOptions) (payload string, truncated bool) {
	snapshot, truncated = truncateUTF8(snapshot, opts.MaxContextBytes)

	var b strings.Builder
	if opts.IncludeGrammar {
		b.WriteString(grammarSnippet)
		b.WriteString("\n")
	}
	b.WriteString("Current canvas (as DSL):\n")
	b.WriteString(snapshot)
	b.WriteString("\n\n")

	for _, t := range sess.Recent(opts.HistoryLimit) {
		b.WriteString("Previous prompt: ")
		b.WriteString(t.Prompt)
		b.WriteString("\nPrevious response:\n")
		b.WriteString(t.DSL)
		b.WriteString("\n")
		if t.Error != "" {
			b.WriteString("Previous error: ")
			b.WriteString(t.Error)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if retryError != "" {
		b.WriteString("Your last response failed to type-check:\n")
		b.WriteString(retryError)
		b.WriteString("\nFix the script and respond with corrected DSL only.\n\n")
	}

	b.WriteString("User request:\n")
	b.WriteString(prompt)
	return b.String(), truncated
}
