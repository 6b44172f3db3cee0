package ai

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xonecas/revel/internal/config"
	"github.com/xonecas/revel/internal/dsl"
	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/store"
	"github.com/xonecas/revel/internal/undo"
)

func newTestDriver(t *testing.T, providerScript string) *Driver {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	mgr := undo.New(g)
	g.SetRecorder(mgr)
	rt := dsl.NewRuntime(g, "space-a")

	reg := NewRegistry([]config.ProviderConfig{
		{ID: "fake", Label: "Fake", Binary: "sh", Args: []string{"-c", providerScript}, InputMode: config.InputArg},
	})

	return &Driver{
		Registry: reg,
		Store:    st,
		Settings: config.AISettings{SelectedProvider: "fake", TimeoutMs: 2000, MaxContextBytes: 4096, HistoryLimit: 3},
		Session:  NewSession(3),
		Runtime:  rt,
		Undo:     mgr,
	}
}

func TestDriver_RunTurn_AppliesValidScript(t *testing.T) {
	d := newTestDriver(t, `echo 'note_create a "hi" (0,0) (10,10)'`)
	res, err := d.RunTurn(context.Background(), "add a note")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected the script to be applied, got %+v", res)
	}
	if len(d.Session.Recent(0)) != 1 {
		t.Fatalf("expected one turn recorded in the session")
	}
}

func TestDriver_RunTurn_RollsBackNoOpScript(t *testing.T) {
	d := newTestDriver(t, `echo 'presentation_next'`)
	res, err := d.RunTurn(context.Background(), "do nothing")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Applied {
		t.Fatalf("expected a no-op script to be rolled back, not applied")
	}
	if d.Undo.CanUndo() {
		t.Fatalf("expected the undo stack to be empty after rollback")
	}
}

func TestDriver_RunTurn_FailsAfterMaxAttemptsOnBadScript(t *testing.T) {
	d := newTestDriver(t, `echo 'this is not valid dsl'`)
	res, err := d.RunTurn(context.Background(), "break it")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Applied {
		t.Fatalf("expected the malformed script to never apply")
	}
	if res.Attempts != maxAttempts {
		t.Fatalf("expected all %d attempts to be used, got %d", maxAttempts, res.Attempts)
	}
	if res.Error == "" {
		t.Fatalf("expected a type-check error to be reported")
	}
}

func TestDriver_RunTurn_PersistsActionLogEntry(t *testing.T) {
	d := newTestDriver(t, `echo 'note_create a "hi" (0,0) (10,10)'`)
	if _, err := d.RunTurn(context.Background(), "add a note"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	entries, err := d.Store.ListActions(0)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(entries) != 1 || entries[0].Origin != "ai" {
		t.Fatalf("expected one ai-origin action log entry, got %+v", entries)
	}
}
