// Package logging sets up the process-wide zerolog logger: a file under
// revel's config directory rather than stderr, since stderr is the
// terminal the bubbletea program is drawing into.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/revel/internal/config"
)

// Setup opens (or creates) revel's log file and points the global zerolog
// logger at it. Grounded on the teacher's cmd/symb/main.go
// setupFileLogging: Unix-time field format, info level by default, append
// mode so restarts don't truncate history.
func Setup() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, "revel.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	log.Logger = log.Output(file)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}
