package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
	storageio "github.com/cable-lsm/benchcab/internal/storage/io"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

const (
	defaultDataDir = ".benchcab"
	defaultDBFile  = "benchcab.db"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.benchcab/benchcab.db for state and run the benchmark
// in the current working directory.
type Config struct {
	// DBPath is the SQLite state database path.
	// Default: ~/.benchcab/benchcab.db.
	DBPath string

	// WorkDir is the benchmark working directory where sources are checked
	// out and run directories are materialised.
	// Default: the current working directory.
	WorkDir string

	// MetDir overrides the directory scanned for fluxsite met forcing files.
	// When empty (default), the PLUMBER2 collection on gadi is used.
	//
	// Point this at a directory with a small number of forcing files for
	// testing without real infrastructure.
	MetDir string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.WorkDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory: %w", err)
		}
		c.WorkDir = dir
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for driving CABLE benchmark runs
// programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, although the benchmark workflow
// itself is sequential: checkout, build, setup, then run or submit.
type Client struct {
	repo    storage.StateRepository
	runner  syscmd.Runner
	workDir string
	metDir  string
	logger  log.Logger
	closeFn func() error
}

// New creates a new SDK client backed by a SQLite state database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:    repo,
		runner:  syscmd.NewRunner(cfg.Logger),
		workDir: workDir,
		metDir:  cfg.MetDir,
		logger:  cfg.Logger,
		closeFn: repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// BenchConfig is a loaded and validated benchmark configuration.
//
// The contents are opaque, pass the value to the workflow methods on
// [Client]. Obtain one with [LoadConfig].
type BenchConfig struct {
	cfg  model.Config
	path string
}

// Path returns the absolute path of the configuration file.
func (c *BenchConfig) Path() string { return c.path }

// LoadConfig reads a benchmark configuration file, fills the optional keys
// with their defaults and validates the result.
//
// Returns an error matching [ErrNotValid] when the configuration is
// invalid.
func LoadConfig(ctx context.Context, path string) (*BenchConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve config path: %w", err)
	}

	repo := storageio.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, abs[1:])
	if err != nil {
		return nil, mapError(fmt.Errorf("could not load config: %w", err))
	}

	return &BenchConfig{cfg: cfg, path: abs}, nil
}
