package logview

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/revel/internal/store"
)

// Run loads every action_log row from st and blocks in a bubbletea program
// until the user quits. Grounded on cmd/symb/main.go's tea.NewProgram(...).Run()
// invocation.
func Run(st *store.Store) error {
	entries, err := st.ListActions(0)
	if err != nil {
		return err
	}
	p := tea.NewProgram(New(entries))
	_, err = p.Run()
	return err
}
