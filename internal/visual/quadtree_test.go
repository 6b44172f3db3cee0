package visual

import (
	"testing"

	"github.com/xonecas/revel/internal/model"
)

func TestQuadtree_ReindexAndQuery(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	q := NewQuadtree(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	g.SetIndexer(q)

	a := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Position: model.Position{X: 10, Y: 10}, Size: model.Size{W: 20, H: 20}})
	b := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Position: model.Position{X: 500, Y: 500}, Size: model.Size{W: 20, H: 20}})

	hits := q.Query(Rect{X: 0, Y: 0, W: 100, H: 100})
	if len(hits) != 1 || hits[0] != a.ID {
		t.Fatalf("expected only a in query region, got %v", hits)
	}

	hits = q.Query(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	ids := map[string]bool{}
	for _, id := range hits {
		ids[id] = true
	}
	if !ids[a.ID] || !ids[b.ID] {
		t.Fatalf("expected both elements in full-canvas query, got %v", hits)
	}
}

func TestQuadtree_MoveReindexesPosition(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	q := NewQuadtree(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	g.SetIndexer(q)

	e := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Position: model.Position{X: 10, Y: 10}, Size: model.Size{W: 10, H: 10}})
	g.UpdatePosition(e, 900, 900)

	hits := q.Query(Rect{X: 0, Y: 0, W: 100, H: 100})
	for _, id := range hits {
		if id == e.ID {
			t.Fatalf("element should have been removed from old bucket after move")
		}
	}
	hits = q.Query(Rect{X: 850, Y: 850, W: 100, H: 100})
	if len(hits) != 1 || hits[0] != e.ID {
		t.Fatalf("expected element at new position, got %v", hits)
	}
}

func TestQuadtree_RemoveAndClear(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	q := NewQuadtree(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	g.SetIndexer(q)

	e := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Position: model.Position{X: 10, Y: 10}, Size: model.Size{W: 10, H: 10}})
	g.DeleteElement(e)

	if hits := q.Query(Rect{X: 0, Y: 0, W: 1000, H: 1000}); len(hits) != 0 {
		t.Fatalf("expected empty index after delete, got %v", hits)
	}

	e2 := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Position: model.Position{X: 20, Y: 20}, Size: model.Size{W: 10, H: 10}})
	_ = e2
	q.Clear()
	if hits := q.Query(Rect{X: 0, Y: 0, W: 1000, H: 1000}); len(hits) != 0 {
		t.Fatalf("expected empty index after Clear, got %v", hits)
	}
}

func TestQuadtree_SplitsBeyondBucketCapacity(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	q := NewQuadtree(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	g.SetIndexer(q)

	for i := 0; i < quadtreeBucketCapacity+4; i++ {
		g.CreateElement(model.ElementConfig{
			SpaceID:  "space-a",
			Kind:     model.KindNote,
			Position: model.Position{X: i * 10, Y: i * 10},
			Size:     model.Size{W: 5, H: 5},
		})
	}

	if q.children[0] == nil {
		t.Fatalf("expected root to split after exceeding bucket capacity")
	}
	hits := q.Query(Rect{X: 0, Y: 0, W: 1000, H: 1000})
	if len(hits) != quadtreeBucketCapacity+4 {
		t.Fatalf("got %d hits after split, want %d", len(hits), quadtreeBucketCapacity+4)
	}
}
