package ai

import (
	"path/filepath"
	"testing"

	"github.com/xonecas/revel/internal/store"
)

func TestSession_AppendEvictsOldestBeyondCapacity(t *testing.T) {
	sess := NewSession(1) // cap floors to 20
	for i := 0; i < 25; i++ {
		sess.Append(Turn{Prompt: "p"})
	}
	if len(sess.Recent(0)) != 20 {
		t.Fatalf("expected capacity floor of 20, got %d", len(sess.Recent(0)))
	}
}

func TestSession_RecentReturnsLastN(t *testing.T) {
	sess := NewSession(3)
	sess.Append(Turn{Prompt: "one"})
	sess.Append(Turn{Prompt: "two"})
	sess.Append(Turn{Prompt: "three"})
	got := sess.Recent(2)
	if len(got) != 2 || got[0].Prompt != "two" || got[1].Prompt != "three" {
		t.Fatalf("unexpected recent turns: %+v", got)
	}
}

func TestRestoreFromLog_SkipsUserOriginEntries(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	if err := st.AppendAction("user", "manual edit", "note_create a \"x\" (0,0) (1,1)", ""); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}
	if err := st.AppendAction("ai", "recent ai turn", "note_create b \"y\" (0,0) (1,1)", ""); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}

	sess, err := RestoreFromLog(st, 3)
	if err != nil {
		t.Fatalf("RestoreFromLog: %v", err)
	}
	turns := sess.Recent(0)
	if len(turns) != 1 || turns[0].Prompt != "recent ai turn" {
		t.Fatalf("expected only the ai-origin turn restored, got %+v", turns)
	}
}

func TestRestoreCap_FloorsAt20(t *testing.T) {
	if got := restoreCap(1); got != 20 {
		t.Fatalf("expected floor of 20, got %d", got)
	}
	if got := restoreCap(10); got != 50 {
		t.Fatalf("expected 10*5=50, got %d", got)
	}
}
