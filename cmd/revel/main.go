// Command revel is the CLI entry point: open (or create) a database file,
// load its root space into memory, optionally run a DSL script against it,
// optionally open the read-only action-log viewer, then exit (spec.md §6's
// command-line surface: `--dsl <path>` plus a positional db file).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xonecas/revel/internal/dsl"
	"github.com/xonecas/revel/internal/logging"
	"github.com/xonecas/revel/internal/logview"
	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/store"
	"github.com/xonecas/revel/internal/undo"
	"github.com/xonecas/revel/internal/visual"
)

const rootSpaceSettingKey = "root_space_id"

func main() {
	if err := logging.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set up logging: %v\n", err)
	}

	dslPath := flag.String("dsl", "", "load and execute a DSL script after startup")
	logMode := flag.Bool("log", false, "open the read-only action-log viewer instead of running a script")
	flag.Parse()

	dbPath := "revel.db"
	if args := flag.Args(); len(args) > 0 {
		dbPath = args[0]
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Printf("Error opening %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer st.Close()

	if *logMode {
		if err := logview.Run(st); err != nil {
			fmt.Printf("Error running log viewer: %v\n", err)
			os.Exit(1)
		}
		return
	}

	graph, spaceID, err := loadOrCreateRootSpace(st)
	if err != nil {
		fmt.Printf("Error loading root space: %v\n", err)
		os.Exit(1)
	}

	mgr := undo.New(graph)
	rt := dsl.NewRuntime(graph, spaceID)
	rt.SpaceStore = st
	graph.SetRecorder(&dsl.BindingRecorder{Inner: mgr, Runtime: rt})
	graph.SetIndexer(visual.NewQuadtree(visual.Rect{X: -1e6, Y: -1e6, W: 2e6, H: 2e6}))

	if *dslPath != "" {
		src, err := os.ReadFile(*dslPath)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", *dslPath, err)
			os.Exit(1)
		}
		result, err := dsl.RunScript(*dslPath, string(src), rt)
		if err != nil {
			_ = st.AppendAction("dsl", *dslPath, string(src), err.Error())
			fmt.Printf("Error running %s: %v\n", *dslPath, err)
			os.Exit(1)
		}
		if !result.OK() {
			fmt.Printf("%s\n", result.FormatErrors())
			_ = st.AppendAction("dsl", *dslPath, string(src), result.FormatErrors())
			os.Exit(1)
		}
		_ = st.AppendAction("dsl", *dslPath, string(src), "")
	}

	if _, err := st.SaveDirty(graph.Elements(spaceID)); err != nil {
		fmt.Printf("Error saving: %v\n", err)
		os.Exit(1)
	}
}

// loadOrCreateRootSpace resolves the database's single top-level space,
// creating it on first run, and hydrates a Graph with its elements.
func loadOrCreateRootSpace(st *store.Store) (*model.Graph, string, error) {
	graph := model.NewGraph()

	spaceID, err := st.GetSetting(rootSpaceSettingKey)
	if err != nil {
		return nil, "", err
	}

	if spaceID == "" {
		sp := &model.Space{ID: "root", Name: "Home"}
		if err := st.CreateSpace(sp); err != nil {
			return nil, "", err
		}
		if err := st.SetSetting(rootSpaceSettingKey, sp.ID); err != nil {
			return nil, "", err
		}
		graph.PutSpace(sp)
		return graph, sp.ID, nil
	}

	loaded, err := st.LoadSpace(spaceID)
	if err != nil {
		return nil, "", err
	}
	graph.PutSpace(loaded.Space)
	for _, e := range loaded.Elements {
		graph.Adopt(e)
	}
	return graph, spaceID, nil
}
