package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/model"
	storageio "github.com/cable-lsm/benchcab/internal/storage/io"
)

// skipBitwiseCmp is the only optional phase of the composite workflows.
const skipBitwiseCmp = "fluxsite-bitwise-cmp"

// loadConfig loads and validates the benchmark configuration file and
// returns it along with its absolute path.
func loadConfig(ctx context.Context, path string) (model.Config, string, error) {
	configPath := path
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return model.Config{}, "", fmt.Errorf("could not resolve config path: %w", err)
		}
		configPath = absPath
	}

	configRepo := storageio.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := configRepo.GetConfig(ctx, configPath[1:])
	if err != nil {
		return model.Config{}, "", fmt.Errorf("could not load config: %w", err)
	}

	return cfg, configPath, nil
}

// workDir returns the benchmark working directory, the directory benchcab
// was invoked from.
func workDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not resolve working directory: %w", err)
	}
	return dir, nil
}

func skips(skip []string, phase string) bool {
	for _, s := range skip {
		if s == phase {
			return true
		}
	}
	return false
}
