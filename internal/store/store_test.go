package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xonecas/revel/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSpace(t *testing.T, s *Store, id string) *model.Space {
	t.Helper()
	sp := &model.Space{
		ID:        id,
		Name:      "space " + id,
		CreatedAt: time.Unix(1700000000, 0),
	}
	sp.BackgroundColor = model.Color{R: 1, G: 1, B: 1, A: 1}
	sp.GridColor = model.Color{A: 1}
	if err := s.CreateSpace(sp); err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	return sp
}

func TestSetting_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	v, err := s.GetSetting("missing")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty for unset key, got %q", v)
	}

	if err := s.SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	v, err = s.GetSetting("theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "dark" {
		t.Fatalf("got %q, want dark", v)
	}

	if err := s.SetSetting("theme", "light"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	v, _ = s.GetSetting("theme")
	if v != "light" {
		t.Fatalf("got %q after overwrite, want light", v)
	}
}

func TestMigrate_StampsSchemaVersion(t *testing.T) {
	s := openTestStore(t)
	v, err := s.GetSetting("schema_version")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != currentSchemaVersion {
		t.Fatalf("schema_version = %q, want %q", v, currentSchemaVersion)
	}
}

func TestSaveDirty_InsertThenLoadSpace(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	e := g.CreateElement(model.ElementConfig{
		SpaceID:  "space-a",
		Kind:     model.KindNote,
		Position: model.Position{X: 10, Y: 20},
		Size:     model.Size{W: 100, H: 50},
		Text:     "hello world",
	})

	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty: %v", err)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if len(loaded.Elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(loaded.Elements))
	}
	got := loaded.Elements[0]
	if got.ID != e.ID {
		t.Fatalf("loaded id %q, want %q", got.ID, e.ID)
	}
	if got.Text.Get() != "hello world" {
		t.Fatalf("loaded text %q", got.Text.Get())
	}
	if got.Pos.Get() != (model.Position{X: 10, Y: 20, Z: 0}) {
		t.Fatalf("loaded position %+v", got.Pos.Get())
	}
	if got.Sz.Get() != (model.Size{W: 100, H: 50}) {
		t.Fatalf("loaded size %+v", got.Sz.Get())
	}
}

func TestSaveDirty_UpdateExistingRow(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote, Text: "v1"})
	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty insert: %v", err)
	}

	g.ClearDirty(g.DirtyIDs())
	g.UpdateText(e, "v2")
	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty update: %v", err)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if len(loaded.Elements) != 1 {
		t.Fatalf("got %d elements after update, want 1", len(loaded.Elements))
	}
	if loaded.Elements[0].Text.Get() != "v2" {
		t.Fatalf("text = %q, want v2", loaded.Elements[0].Text.Get())
	}
}

func TestSaveDirty_DeletePhysicallyRemovesRow(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote})
	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty insert: %v", err)
	}

	g.DeleteElement(e)
	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty delete: %v", err)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if len(loaded.Elements) != 0 {
		t.Fatalf("expected element physically removed, got %d", len(loaded.Elements))
	}
}

func TestSaveDirty_PrunesDanglingConnection(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	a := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote})
	b := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindNote})
	conn := g.CreateElement(model.ElementConfig{
		SpaceID: "space-a",
		Kind:    model.KindConnection,
		Conn:    &model.Connection{FromElementID: a.ID, ToElementID: b.ID},
	})

	if _, err := s.SaveDirty([]*model.Element{a, b, conn}); err != nil {
		t.Fatalf("SaveDirty: %v", err)
	}

	// Delete a and save only a, leaving the connection's from_element_id
	// dangling in the database.
	g.DeleteElement(a)
	if _, err := s.SaveDirty([]*model.Element{a}); err != nil {
		t.Fatalf("SaveDirty delete a: %v", err)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	for _, el := range loaded.Elements {
		if el.Kind == model.KindConnection {
			t.Fatalf("dangling connection should have been pruned, found %s", el.ID)
		}
	}
}

func TestLoadSpace_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadSpace("nope")
	if err == nil {
		t.Fatal("expected error for missing space")
	}
	storeErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if storeErr.Kind != KindNotFound {
		t.Fatalf("kind = %v, want KindNotFound", storeErr.Kind)
	}
}

func TestLoadMedia_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "space-a", Kind: model.KindMedia})
	e.MediaData = &model.Media{Kind: model.MediaImage, Bytes: []byte{1, 2, 3, 4}, Thumbnail: []byte{9}}

	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty: %v", err)
	}

	b, err := s.LoadMedia(e.ID)
	if err != nil {
		t.Fatalf("LoadMedia: %v", err)
	}
	if len(b) != 4 || b[0] != 1 {
		t.Fatalf("media bytes = %v", b)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if loaded.Elements[0].MediaData == nil || len(loaded.Elements[0].MediaData.Bytes) != 0 {
		t.Fatalf("load_space must not include media bytes")
	}
}

func TestSaveSpaceSettings(t *testing.T) {
	s := openTestStore(t)
	sp := seedSpace(t, s, "space-a")

	sp.BackgroundColor = model.Color{R: 0.2, G: 0.3, B: 0.4, A: 1}
	sp.ShowGrid = true
	if err := s.SaveSpaceSettings(sp); err != nil {
		t.Fatalf("SaveSpaceSettings: %v", err)
	}

	loaded, err := s.LoadSpace("space-a")
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if loaded.Space.BackgroundColor.R != 0.2 || !loaded.Space.ShowGrid {
		t.Fatalf("settings did not persist: %+v", loaded.Space)
	}
}

func TestSearch_MatchesAndSnippet(t *testing.T) {
	s := openTestStore(t)
	seedSpace(t, s, "space-a")

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	e := g.CreateElement(model.ElementConfig{
		SpaceID: "space-a",
		Kind:    model.KindNote,
		Text:    "the quick brown fox jumps over the lazy dog",
	})
	if _, err := s.SaveDirty([]*model.Element{e}); err != nil {
		t.Fatalf("SaveDirty: %v", err)
	}

	hits, err := s.Search("BROWN")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ElementID != e.ID || hits[0].SpaceName != "space space-a" {
		t.Fatalf("hit = %+v", hits[0])
	}
}

func TestSearch_BelowMinLengthReturnsNothing(t *testing.T) {
	s := openTestStore(t)
	hits, err := s.Search("ab")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected nil for sub-minimum query, got %v", hits)
	}
}

func TestAppendAndListActions(t *testing.T) {
	s := openTestStore(t)

	if err := s.AppendAction("user", "", "create_element(...)", ""); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}
	if err := s.AppendAction("ai", "add a red note", "create_element(kind=note)", ""); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}

	entries, err := s.ListActions(0)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Origin != "ai" || entries[1].Origin != "user" {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestListActions_RespectsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		if err := s.AppendAction("user", "", "noop()", ""); err != nil {
			t.Fatalf("AppendAction: %v", err)
		}
	}
	entries, err := s.ListActions(2)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}
