// Package pbs renders, submits and polls PBS batch jobs on the NCI
// queue.
package pbs

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// baseStorageFlags are always granted to the job, they cover the met
// forcing data, the module system and the CABLE ancillary files.
var baseStorageFlags = []string{"gdata/ks32", "gdata/hh5", "gdata/wd9"}

var jobScriptTemplate = template.Must(template.New("jobscript").Parse(`#!/bin/bash
#PBS -l wd
#PBS -l ncpus={{.NCPUs}}
#PBS -l mem={{.Mem}}
#PBS -l walltime={{.Walltime}}
#PBS -q normal
#PBS -P {{.Project}}
#PBS -j oe
#PBS -m e
#PBS -l storage={{.Storage}}

module purge
{{range .Modules}}module load {{.}}
{{end}}
{{.BenchcabPath}} fluxsite-run-tasks --config={{.ConfigPath}}{{.VerboseFlag}}
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-run-tasks failed. Exiting...'
    exit 1
fi
{{if not .SkipBitwiseCmp}}
{{.BenchcabPath}} fluxsite-bitwise-cmp --config={{.ConfigPath}}{{.VerboseFlag}}
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-bitwise-cmp failed. Exiting...'
    exit 1
fi
{{end}}`))

// ScriptParams hold everything needed to render the job script that runs
// the computationally expensive fluxsite steps on the compute nodes.
type ScriptParams struct {
	Project string
	// ConfigPath is the configuration file path, passed back to the
	// benchcab invocations inside the job.
	ConfigPath string
	Modules    []string
	// BenchcabPath is the path of the benchcab executable to run inside
	// the job.
	BenchcabPath   string
	PBS            model.PBSConfig
	Verbose        bool
	SkipBitwiseCmp bool
}

// RenderJobScript returns the text of the PBS job script. Zero valued
// PBS resources fall back to the defaults.
func RenderJobScript(params ScriptParams) (string, error) {
	defaults := model.DefaultPBSConfig()
	if params.PBS.NCPUs == 0 {
		params.PBS.NCPUs = defaults.NCPUs
	}
	if params.PBS.Mem == "" {
		params.PBS.Mem = defaults.Mem
	}
	if params.PBS.Walltime == "" {
		params.PBS.Walltime = defaults.Walltime
	}

	verboseFlag := ""
	if params.Verbose {
		verboseFlag = " -v"
	}

	storageFlags := append([]string{}, baseStorageFlags...)
	storageFlags = append(storageFlags, params.PBS.Storage...)

	var b strings.Builder
	err := jobScriptTemplate.Execute(&b, struct {
		NCPUs          int
		Mem            string
		Walltime       string
		Project        string
		Storage        string
		Modules        []string
		BenchcabPath   string
		ConfigPath     string
		VerboseFlag    string
		SkipBitwiseCmp bool
	}{
		NCPUs:          params.PBS.NCPUs,
		Mem:            params.PBS.Mem,
		Walltime:       params.PBS.Walltime,
		Project:        params.Project,
		Storage:        strings.Join(storageFlags, "+"),
		Modules:        params.Modules,
		BenchcabPath:   params.BenchcabPath,
		ConfigPath:     params.ConfigPath,
		VerboseFlag:    verboseFlag,
		SkipBitwiseCmp: params.SkipBitwiseCmp,
	})
	if err != nil {
		return "", fmt.Errorf("render job script: %w", err)
	}

	return b.String(), nil
}

// StateDescriptions maps PBS job states to human readable descriptions.
var StateDescriptions = map[string]string{
	"Q": "queued",
	"R": "running",
	"H": "held",
	"E": "exiting",
	"F": "finished",
}

// ClientConfig is the configuration for a Client.
type ClientConfig struct {
	Runner syscmd.Runner
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "pbs.Client"})

	return nil
}

// Client talks to the PBS scheduler through its command line tools.
type Client struct {
	runner syscmd.Runner
	logger log.Logger
}

// NewClient returns a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Client{
		runner: config.Runner,
		logger: config.Logger,
	}, nil
}

// Submit submits the job script at scriptPath and returns the job id
// reported by the scheduler.
func (c *Client) Submit(ctx context.Context, scriptPath string) (string, error) {
	out, err := c.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"qsub", scriptPath},
	})
	if err != nil {
		return "", fmt.Errorf("submit job script %q: %w", scriptPath, err)
	}

	return strings.TrimSpace(out), nil
}

// JobState returns the scheduler state of a job, e.g `Q` or `R`.
// Finished jobs are included in the query.
func (c *Client) JobState(ctx context.Context, jobID string) (string, error) {
	out, err := c.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"qstat", "-f", "-x", jobID},
	})
	if err != nil {
		return "", fmt.Errorf("query job %q: %w", jobID, err)
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), "=")
		if found && strings.TrimSpace(key) == "job_state" {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("no job state reported for job %q", jobID)
}
