package workflow

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	sdklib "github.com/cable-lsm/benchcab/pkg/lib"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	GitBin string
}

func (c *Config) defaults() error {
	if c.GitBin == "" {
		c.GitBin = "git"
	}

	path, err := exec.LookPath(c.GitBin)
	if err != nil {
		return fmt.Errorf("git is required for checkout tests: %w", err)
	}
	c.GitBin = path

	// Builds and module checks shell out through a bash login shell.
	if _, err := exec.LookPath("bash"); err != nil {
		return fmt.Errorf("bash is required for build tests: %w", err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "BENCHCAB_INTEGRATION"
		envGitBin     = "BENCHCAB_INTEGRATION_GIT"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		GitBin: os.Getenv(envGitBin),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// NewTestClient creates an SDK client with a temp SQLite DB for test
// isolation. Runs are recorded against workDir, met forcings are read
// from metDir.
func NewTestClient(t *testing.T, workDir, metDir string) *sdklib.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	client, err := sdklib.New(ctx, sdklib.Config{
		DBPath:  dbPath,
		WorkDir: workDir,
		MetDir:  metDir,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// LoadBenchConfig writes configYAML to a temp file and loads it through
// the SDK.
func LoadBenchConfig(t *testing.T, configYAML string) *sdklib.BenchConfig {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))

	cfg, err := sdklib.LoadConfig(context.Background(), path)
	require.NoError(t, err)

	return cfg
}

// StubModuleCommand points HOME at a profile defining a no-op `module`
// shell function, so login shells wrapping builds and module checks work
// on hosts without the environment modules system installed. The profile
// is sourced after /etc/profile and therefore also shadows a real module
// command.
func StubModuleCommand(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	profile := "module() { :; }\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bash_profile"), []byte(profile), 0o644))
	t.Setenv("HOME", home)
}

// StubNccmp prepends a stub nccmp to PATH that prints a one line report
// and exits with exitCode. Exit code 0 makes every comparison identical,
// anything else makes them differ.
func StubNccmp(t *testing.T, exitCode int) {
	t.Helper()

	binDir := t.TempDir()
	script := fmt.Sprintf("#!/bin/sh\necho \"stub nccmp: compared $2 and $3\"\nexit %d\n", exitCode)
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "nccmp"), []byte(script), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// Git runs a git command in dir with a fixed committer identity and fails
// the test on error. Global and system git configuration is masked so the
// fixture repositories do not depend on the host setup. Returns the
// trimmed output.
func Git(t *testing.T, config Config, dir string, args ...string) string {
	t.Helper()

	base := []string{"-C", dir, "-c", "user.name=integration", "-c", "user.email=integration@example.com"}
	cmd := exec.Command(config.GitBin, append(base, args...)...)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_SYSTEM=/dev/null")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)

	return strings.TrimSpace(string(out))
}

// cableBuildScript is committed to the fixture repository as build.sh. The
// module line is dropped by the build before execution, the marker file
// proves it never ran. The produced executable mimics a CABLE offline run
// from a task directory: it writes the task output file into the shared
// outputs directory.
const cableBuildScript = `#!/usr/bin/env bash
set -e
module load netcdf > module-ran.txt
mkdir -p src/offline
cat > src/offline/cable <<"EOF"
#!/bin/sh
task=$(basename "$PWD")
echo "stub CABLE run for $task"
echo "stub netcdf output for $task" > "../../outputs/${task}_out.nc"
EOF
chmod +x src/offline/cable
`

// NewCableRepo creates a local git repository shaped like a CABLE checkout,
// with sources under src/ and a custom build script producing a stub cable
// executable. Besides the default branch main it carries a dev branch so a
// configuration can benchmark two realisations of the same repository.
func NewCableRepo(t *testing.T, config Config) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "CABLE")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "offline"), 0o755))

	driver := "PROGRAM cable_offline_driver\nEND PROGRAM cable_offline_driver\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "offline", "cable_driver.F90"), []byte(driver), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.sh"), []byte(cableBuildScript), 0o755))

	Git(t, config, dir, "init", "--quiet")
	Git(t, config, dir, "add", ".")
	Git(t, config, dir, "commit", "--quiet", "-m", "CABLE sources")
	Git(t, config, dir, "branch", "-M", "main")
	Git(t, config, dir, "branch", "dev")

	return dir
}

// NewMetDir creates a directory of placeholder met forcing files.
func NewMetDir(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("netcdf"), 0o644))
	}

	return dir
}

// WriteNamelists seeds the work directory with the base CABLE namelist
// that fluxsite setup copies into every task directory.
func WriteNamelists(t *testing.T, workDir string) {
	t.Helper()

	dir := filepath.Join(workDir, "namelists")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	nml := "&cable\n   filename%veg = 'def_veg_params.txt'\n/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cable.nml"), []byte(nml), 0o644))
}
