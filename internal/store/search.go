package store

import "strings"

// SearchHit is one match from Search: the element and space it belongs to,
// plus a short snippet of the matching text for display in the log/search
// dialog.
type SearchHit struct {
	ElementID string
	SpaceID   string
	SpaceName string
	Snippet   string
}

// minQueryLen is spec.md §4.1's floor for text_query before Search runs at
// all; shorter queries return no results rather than a full table scan.
const minQueryLen = 3

// Search does a case-insensitive substring search over every element's text
// payload, joined back to its owning space's name. Results are ordered by
// space name then element id for stable output.
func (s *Store) Search(textQuery string) ([]SearchHit, error) {
	if len(textQuery) < minQueryLen {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT t.element_id, e.space_id, sp.name, t.text
		FROM texts t
		JOIN elements e ON e.id = t.element_id
		JOIN spaces sp ON sp.id = e.space_id
		WHERE t.text LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY sp.name, t.element_id`, textQuery)
	if err != nil {
		return nil, newErr(KindIO, "search", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var text string
		if err := rows.Scan(&h.ElementID, &h.SpaceID, &h.SpaceName, &text); err != nil {
			return nil, newErr(KindSchema, "search scan", err)
		}
		h.Snippet = snippet(text, textQuery)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, newErr(KindIO, "search", err)
	}
	return hits, nil
}

// snippet returns up to snippetRadius characters of context on either side
// of the first case-insensitive match of query within text.
const snippetRadius = 40

func snippet(text, query string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 {
		return text
	}
	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	out := text[start:end]
	if start > 0 {
		out = "…" + out
	}
	if end < len(text) {
		out = out + "…"
	}
	return out
}
