// Package config loads the AI provider roster from its JSON config file and
// reads/writes the ai.* settings keys that the provider driver and its
// settings UI consult (spec.md §6).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xonecas/revel/internal/store"
)

// InputMode is how a provider subprocess receives its payload.
type InputMode string

const (
	InputStdin InputMode = "stdin"
	InputArg   InputMode = "arg"
)

// ProviderConfig describes one AI collaborator backend: a binary to spawn,
// its invocation shape, and how the prompt payload reaches it.
type ProviderConfig struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Binary     string    `json:"binary"`
	Args       []string  `json:"args,omitempty"`
	InputMode  InputMode `json:"input_mode"`
	ArgFlag    string    `json:"arg_flag,omitempty"`
	StdinFlag  string    `json:"stdin_flag,omitempty"`
}

// providersFile is the on-disk shape of the AI provider config file.
type providersFile struct {
	Providers []ProviderConfig `json:"providers"`
}

// DefaultProviders is the built-in roster used when no config file is
// present, or as a base that a config file's entries are merged over.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{ID: "claude", Label: "Claude Code", Binary: "claude", InputMode: InputArg, ArgFlag: "-p"},
		{ID: "ollama", Label: "Ollama", Binary: "ollama", Args: []string{"run", "llama3"}, InputMode: InputStdin},
		{ID: "codex", Label: "Codex CLI", Binary: "codex", InputMode: InputArg, ArgFlag: "exec"},
	}
}

// LoadProviders reads the AI provider roster from path. A missing path (or
// empty string) yields the built-in defaults; entries in the file with an
// id matching a built-in replace it, new ids are appended.
func LoadProviders(path string) ([]ProviderConfig, error) {
	base := DefaultProviders()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read provider config: %w", err)
	}

	var pf providersFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse provider config %s: %w", path, err)
	}

	merged := make(map[string]ProviderConfig, len(base))
	order := make([]string, 0, len(base))
	for _, p := range base {
		merged[p.ID] = p
		order = append(order, p.ID)
	}
	for _, p := range pf.Providers {
		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.ID, err)
		}
		if _, exists := merged[p.ID]; !exists {
			order = append(order, p.ID)
		}
		merged[p.ID] = p
	}

	out := make([]ProviderConfig, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out, nil
}

func validateProvider(p ProviderConfig) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Binary == "" {
		return errors.New("binary is required")
	}
	switch p.InputMode {
	case InputStdin, InputArg:
	default:
		return fmt.Errorf("input_mode=%q must be %q or %q", p.InputMode, InputStdin, InputArg)
	}
	return nil
}

// AISettings mirrors the ai.* settings keys (spec.md §6), persisted to the
// store's settings table as individual string rows.
type AISettings struct {
	SelectedProvider string
	TimeoutMs        int
	MaxContextBytes  int
	HistoryLimit     int
	IncludeGrammar   bool
	CLIPaths         map[string]string
}

const (
	keySelectedProvider = "ai.selected_provider"
	keyTimeoutMs        = "ai.timeout_ms"
	keyMaxContextBytes  = "ai.max_context_bytes"
	keyHistoryLimit     = "ai.history_limit"
	keyIncludeGrammar   = "ai.include_grammar"
	keyCLIPaths         = "ai.cli_paths"

	defaultTimeoutMs       = 60000
	defaultMaxContextBytes = 4096
	defaultHistoryLimit    = 3
)

// LoadAISettings reads the ai.* keys from st, applying spec.md §6's defaults
// for any key that has never been set.
func LoadAISettings(st *store.Store) (AISettings, error) {
	out := AISettings{
		TimeoutMs:       defaultTimeoutMs,
		MaxContextBytes: defaultMaxContextBytes,
		HistoryLimit:    defaultHistoryLimit,
		CLIPaths:        make(map[string]string),
	}

	if v, err := st.GetSetting(keySelectedProvider); err != nil {
		return out, err
	} else if v != "" {
		out.SelectedProvider = v
	}
	if v, err := getIntSetting(st, keyTimeoutMs, defaultTimeoutMs); err != nil {
		return out, err
	} else {
		out.TimeoutMs = v
	}
	if v, err := getIntSetting(st, keyMaxContextBytes, defaultMaxContextBytes); err != nil {
		return out, err
	} else {
		out.MaxContextBytes = v
	}
	if v, err := getIntSetting(st, keyHistoryLimit, defaultHistoryLimit); err != nil {
		return out, err
	} else {
		out.HistoryLimit = v
	}
	if v, err := st.GetSetting(keyIncludeGrammar); err != nil {
		return out, err
	} else {
		out.IncludeGrammar = v == "true"
	}
	if v, err := st.GetSetting(keyCLIPaths); err != nil {
		return out, err
	} else if v != "" {
		if err := json.Unmarshal([]byte(v), &out.CLIPaths); err != nil {
			return out, fmt.Errorf("parse %s: %w", keyCLIPaths, err)
		}
	}
	return out, nil
}

// SaveAISettings persists every ai.* key back to st.
func SaveAISettings(st *store.Store, s AISettings) error {
	cliPaths, err := json.Marshal(s.CLIPaths)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", keyCLIPaths, err)
	}
	grammar := "false"
	if s.IncludeGrammar {
		grammar = "true"
	}
	pairs := map[string]string{
		keySelectedProvider: s.SelectedProvider,
		keyTimeoutMs:        strconv.Itoa(s.TimeoutMs),
		keyMaxContextBytes:  strconv.Itoa(s.MaxContextBytes),
		keyHistoryLimit:     strconv.Itoa(s.HistoryLimit),
		keyIncludeGrammar:   grammar,
		keyCLIPaths:         string(cliPaths),
	}
	for k, v := range pairs {
		if err := st.SetSetting(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

func getIntSetting(st *store.Store, key string, def int) (int, error) {
	v, err := st.GetSetting(key)
	if err != nil {
		return def, err
	}
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("setting %s=%q is not an integer", key, v)
	}
	return n, nil
}

// DataDir returns the path to revel's config directory (~/.config/revel);
// EnsureDataDir creates it, and internal/logging keeps its log file under
// it.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "revel"), nil
}

// EnsureDataDir creates the config directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
