package model

// ParentChain walks a space's parent_id chain starting at id, returning the
// ids visited in order (id first, root last). It keeps a visited set and
// returns ErrCyclicSpace the moment an id repeats, per spec.md's cycle-
// safety requirement and testable property 2.
func (g *Graph) ParentChain(id string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var chain []string
	seen := make(map[string]bool)
	cur := id
	for cur != "" {
		if seen[cur] {
			return chain, ErrCyclicSpace
		}
		seen[cur] = true
		chain = append(chain, cur)

		s, ok := g.spaces[cur]
		if !ok {
			return chain, ErrSpaceNotFound
		}
		if s.ParentID == nil {
			break
		}
		cur = *s.ParentID
	}
	return chain, nil
}

// SetSpaceBackground sets a space's background color and records an action.
func (g *Graph) SetSpaceBackground(s *Space, c Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := s.BackgroundColor
	s.BackgroundColor = c
	g.recorder.RecordBackground(s, old, c)
}

// SetSpaceGrid sets a space's grid color/visibility and records an action.
func (g *Graph) SetSpaceGrid(s *Space, color Color, enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	oldColor, oldEnabled := s.GridColor, s.ShowGrid
	s.GridColor = color
	s.ShowGrid = enabled
	g.recorder.RecordGrid(s, oldColor, oldEnabled, color, enabled)
}

// ChildlessSpace reports whether a space has no remaining live elements or
// child spaces, the precondition for deleting it (spec.md §3).
func (g *Graph) ChildlessSpace(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.elements {
		if e.SpaceID == id && e.State != StateDeleted {
			return false
		}
	}
	for _, s := range g.spaces {
		if s.ParentID != nil && *s.ParentID == id {
			return false
		}
	}
	return true
}
