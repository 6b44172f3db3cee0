package visual

import "github.com/xonecas/revel/internal/model"

// quadtreeBucketCapacity and quadtreeMaxDepth are spec.md §4.4's tuning
// constants: a node splits once it holds more than capacity items, down to
// maxDepth before it stops splitting regardless of occupancy.
const (
	quadtreeBucketCapacity = 8
	quadtreeMaxDepth       = 8
)

// Rect is an axis-aligned bounding box in canvas space.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

func (r Rect) contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

type quadItem struct {
	id   string
	rect Rect
}

// Quadtree is the spatial index over a single space's visual elements,
// implementing model.Indexer. It never holds *model.Element — only ids and
// bounding boxes snapshotted at Reindex time — so it stays a pure geometry
// index the canvas controller resolves against the graph.
type Quadtree struct {
	bounds   Rect
	depth    int
	items    []quadItem
	children [4]*Quadtree // nil until split

	byID map[string]*Quadtree // which leaf (if any) currently holds an id, for O(1) Remove
}

// NewQuadtree creates a root node covering bounds.
func NewQuadtree(bounds Rect) *Quadtree {
	return &Quadtree{bounds: bounds, byID: make(map[string]*Quadtree)}
}

// Reindex implements model.Indexer: inserts or moves e's bounding box.
func (q *Quadtree) Reindex(e *model.Element) {
	q.Remove(e.ID)
	pos := e.Pos.Get()
	sz := e.Sz.Get()
	rect := Rect{X: float64(pos.X), Y: float64(pos.Y), W: float64(sz.W), H: float64(sz.H)}
	q.insert(quadItem{id: e.ID, rect: rect})
}

// Remove implements model.Indexer.
func (q *Quadtree) Remove(id string) {
	leaf, ok := q.byID[id]
	if !ok {
		return
	}
	for i, it := range leaf.items {
		if it.id == id {
			leaf.items = append(leaf.items[:i], leaf.items[i+1:]...)
			break
		}
	}
	delete(q.byID, id)
}

// Clear implements model.Indexer: drops every item, used on space switch.
func (q *Quadtree) Clear() {
	q.items = nil
	q.children = [4]*Quadtree{}
	q.byID = make(map[string]*Quadtree)
}

func (q *Quadtree) insert(it quadItem) {
	node := q
	for {
		if node.children[0] == nil {
			if len(node.items) < quadtreeBucketCapacity || node.depth >= quadtreeMaxDepth {
				node.items = append(node.items, it)
				q.byID[it.id] = node
				return
			}
			node.split()
		}
		child := node.childFor(it.rect)
		if child == nil {
			// Straddles the split lines; keep it at this level.
			node.items = append(node.items, it)
			q.byID[it.id] = node
			return
		}
		node = child
	}
}

func (q *Quadtree) split() {
	hw, hh := q.bounds.W/2, q.bounds.H/2
	x, y := q.bounds.X, q.bounds.Y
	rects := [4]Rect{
		{x, y, hw, hh},
		{x + hw, y, hw, hh},
		{x, y + hh, hw, hh},
		{x + hw, y + hh, hw, hh},
	}
	for i, r := range rects {
		q.children[i] = &Quadtree{bounds: r, depth: q.depth + 1, byID: q.byID}
	}
	items := q.items
	q.items = nil
	for _, it := range items {
		child := q.childFor(it.rect)
		if child == nil {
			q.items = append(q.items, it)
			q.byID[it.id] = q
			continue
		}
		child.items = append(child.items, it)
		q.byID[it.id] = child
	}
}

func (q *Quadtree) childFor(r Rect) *Quadtree {
	for _, c := range q.children {
		if c != nil && c.bounds.contains(r) {
			return c
		}
	}
	return nil
}

// Query returns every item id whose bounding box intersects r, gathered
// from this node and every descendant that overlaps r.
func (q *Quadtree) Query(r Rect) []string {
	var out []string
	q.query(r, &out)
	return out
}

func (q *Quadtree) query(r Rect, out *[]string) {
	if !q.bounds.intersects(r) {
		return
	}
	for _, it := range q.items {
		if it.rect.intersects(r) {
			*out = append(*out, it.id)
		}
	}
	for _, c := range q.children {
		if c != nil {
			c.query(r, out)
		}
	}
}
