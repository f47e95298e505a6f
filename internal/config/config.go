// Package config resolves the layered kpi configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
)

// Backends.
const (
	BackendLocal  = "local"
	BackendGAS    = "gas"
	BackendSheets = "sheets"
)

// File names.
const (
	FileName       = ".kpi.json"
	DotEnvFileName = ".env"
	appDirName     = "kpi"
)

// Environment variables, also read from the project .env file.
const (
	EnvBackend       = "KPI_BACKEND"
	EnvGasURL        = "KPI_GAS_URL"
	EnvSpreadsheetID = "KPI_SPREADSHEET_ID"
	EnvCredentials   = "KPI_CREDENTIALS"
	EnvDataFile      = "KPI_DATA_FILE"
)

// Config holds all configuration options.
type Config struct {
	Backend         string `json:"backend"`
	GasURL          string `json:"gas_url,omitempty"`
	SpreadsheetID   string `json:"spreadsheet_id,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty"`
	DataFile        string `json:"data_file,omitempty"`
	RecordsSheet    string `json:"records_sheet,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
	Timeout         string `json:"timeout,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd   string         `json:"-"`
	DataFileAbs    string         `json:"-"`
	CredentialsAbs string         `json:"-"`
	Location       *time.Location `json:"-"`
	TimeoutValue   time.Duration  `json:"-"`

	Sources Sources `json:"-"`
}

// Sources tracks where configuration came from, for print-config.
type Sources struct {
	Global  string   // global config path if loaded
	Project string   // project or explicit config path if loaded
	DotEnv  string   // .env path if loaded
	Env     []string // environment variables that were applied
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Backend:      BackendLocal,
		DataFile:     ".kpi-data.json",
		RecordsSheet: "records",
		Timezone:     "Local",
		Timeout:      "30s",
	}
}

// Dir returns the per-user kpi directory: $XDG_CONFIG_HOME/kpi, or
// ~/.config/kpi. Empty when neither variable is set.
func Dir(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, appDirName)
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", appDirName)
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd; os.Getwd() when empty
	ConfigPath      string            // -c/--config
	Overrides       Config            // CLI flags; empty fields are ignored
	Env             map[string]string // process environment
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/kpi/config.json)
//  3. Project config (.kpi.json) or the explicit -c file
//  4. Environment, with the project .env filling unset variables
//  5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if dir := Dir(input.Env); dir != "" {
		globalPath := filepath.Join(dir, "config.json")

		globalCfg, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, globalCfg)
			cfg.Sources.Global = globalPath
		}
	}

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, projectCfg)
	cfg.Sources.Project = projectPath

	env, dotEnvPath, err := withDotEnv(workDir, input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.DotEnv = dotEnvPath
	cfg = applyEnv(cfg, env)
	cfg = merge(cfg, input.Overrides)

	err = resolve(&cfg, workDir)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		path := filepath.Join(workDir, FileName)

		cfg, loaded, err := loadFile(path, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	if _, statErr := os.Stat(path); statErr != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrFileNotFound, configPath)
	}

	cfg, _, err := loadFile(path, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile reads a JSONC config file. A missing optional file is not an
// error and reports loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrFileRead, path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	return cfg, true, nil
}

// Parse decodes a JSONC config document. Comments and trailing commas
// are allowed; unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()

	err = dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

// withDotEnv returns env with the project .env filling variables the
// process environment leaves unset.
func withDotEnv(workDir string, env map[string]string) (map[string]string, string, error) {
	path := filepath.Join(workDir, DotEnvFileName)

	fileEnv, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env, "", nil
		}

		return nil, "", fmt.Errorf("%w %s: %w", ErrDotEnv, path, err)
	}

	merged := make(map[string]string, len(env)+len(fileEnv))
	for k, v := range fileEnv {
		merged[k] = v
	}

	for k, v := range env {
		merged[k] = v
	}

	return merged, path, nil
}

func applyEnv(cfg Config, env map[string]string) Config {
	vars := []struct {
		name  string
		field *string
	}{
		{EnvBackend, &cfg.Backend},
		{EnvGasURL, &cfg.GasURL},
		{EnvSpreadsheetID, &cfg.SpreadsheetID},
		{EnvCredentials, &cfg.CredentialsFile},
		{EnvDataFile, &cfg.DataFile},
	}

	for _, v := range vars {
		if val := strings.TrimSpace(env[v.name]); val != "" {
			*v.field = val
			cfg.Sources.Env = append(cfg.Sources.Env, v.name)
		}
	}

	return cfg
}

func merge(base, overlay Config) Config {
	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}

	if overlay.GasURL != "" {
		base.GasURL = overlay.GasURL
	}

	if overlay.SpreadsheetID != "" {
		base.SpreadsheetID = overlay.SpreadsheetID
	}

	if overlay.CredentialsFile != "" {
		base.CredentialsFile = overlay.CredentialsFile
	}

	if overlay.DataFile != "" {
		base.DataFile = overlay.DataFile
	}

	if overlay.RecordsSheet != "" {
		base.RecordsSheet = overlay.RecordsSheet
	}

	if overlay.Timezone != "" {
		base.Timezone = overlay.Timezone
	}

	if overlay.Timeout != "" {
		base.Timeout = overlay.Timeout
	}

	return base
}

// resolve validates cfg and fills the computed fields.
func resolve(cfg *Config, workDir string) error {
	switch cfg.Backend {
	case BackendLocal:
	case BackendGAS:
		if cfg.GasURL == "" {
			return fmt.Errorf("%w: gas_url (or %s) for backend %q", ErrMissingKey, EnvGasURL, cfg.Backend)
		}
	case BackendSheets:
		if cfg.SpreadsheetID == "" {
			return fmt.Errorf("%w: spreadsheet_id (or %s) for backend %q", ErrMissingKey, EnvSpreadsheetID, cfg.Backend)
		}

		if cfg.CredentialsFile == "" {
			return fmt.Errorf("%w: credentials_file (or %s) for backend %q", ErrMissingKey, EnvCredentials, cfg.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, cfg.Timezone)
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("%w: %q (want a positive duration like 30s)", ErrInvalidTimeout, cfg.Timeout)
	}

	cfg.EffectiveCwd = workDir
	cfg.Location = loc
	cfg.TimeoutValue = timeout
	cfg.DataFileAbs = absPath(workDir, cfg.DataFile)

	if cfg.CredentialsFile != "" {
		cfg.CredentialsAbs = absPath(workDir, cfg.CredentialsFile)
	}

	return nil
}

func absPath(workDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(workDir, p)
}
