package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"careertrail/canopy/internal/hierarchy"
	"careertrail/canopy/internal/store"
)

var (
	dbPath    string
	ownerFlag string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Career-history hierarchy engine: typed node forests with cycle-safe moves",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .canopy.db database")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "Owner id scoping every operation")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

// Config is the optional .canopy.yaml file providing defaults for the
// persistent flags.
type Config struct {
	DB    string `yaml:"db"`
	Owner string `yaml:"owner"`
}

// LoadConfig reads a .canopy.yaml found by walking up from the working
// directory. A missing file is not an error.
func LoadConfig() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return &Config{}, nil
	}
	for {
		candidate := filepath.Join(dir, ".canopy.yaml")
		if data, err := os.ReadFile(candidate); err == nil {
			var cfg Config
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", candidate, err)
			}
			return &cfg, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return &Config{}, nil
}

// DiscoverDB finds the database path using priority: env > flag >
// config file > walk-up > XDG fallback. The chosen path need not exist
// yet: the store creates it.
func DiscoverDB(cfg *Config) (string, error) {
	if envPath := os.Getenv("CANOPY_DB"); envPath != "" {
		return envPath, nil
	}
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg.DB != "" {
		return cfg.DB, nil
	}

	// Walk up from CWD for an existing database
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".canopy.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".local", "share", "canopy", "canopy.db"), nil
	}

	return "", fmt.Errorf("no .canopy.db found (set CANOPY_DB, use --db, or add db: to .canopy.yaml)")
}

// Owner resolves the owner id from flag, env, or config file.
func Owner(cfg *Config) (string, error) {
	if ownerFlag != "" {
		return ownerFlag, nil
	}
	if envOwner := os.Getenv("CANOPY_OWNER"); envOwner != "" {
		return envOwner, nil
	}
	if cfg.Owner != "" {
		return cfg.Owner, nil
	}
	return "", fmt.Errorf("no owner set (use --owner, CANOPY_OWNER, or owner: in .canopy.yaml)")
}

// OpenService discovers the database and wires the hierarchy service.
// Callers must Close the returned store.
func OpenService() (*hierarchy.Service, *store.Store, string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	owner, err := Owner(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	path, err := DiscoverDB(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, "", fmt.Errorf("creating database directory: %w", err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, "", err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return hierarchy.New(st, logger), st, owner, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
