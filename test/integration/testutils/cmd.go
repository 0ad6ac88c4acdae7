package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var multiSpaceRegex = regexp.MustCompile(" +")

// RunBenchcab executes a benchcab command with the given arguments string
// (split by spaces) inside workDir. benchcab operates on the current
// directory, so workDir plays the role of the benchmark work directory.
// Use RunBenchcabArgs when arguments contain spaces that should be preserved.
func RunBenchcab(ctx context.Context, env []string, binary, workDir, cmdArgs string, nolog bool) (stdout, stderr []byte, err error) {
	// Sanitize command.
	cmdArgs = strings.TrimSpace(cmdArgs)
	cmdArgs = multiSpaceRegex.ReplaceAllString(cmdArgs, " ")

	// Split into args.
	var args []string
	if cmdArgs != "" {
		args = strings.Split(cmdArgs, " ")
	}

	return RunBenchcabArgs(ctx, env, binary, workDir, args, nolog)
}

// RunBenchcabArgs executes a benchcab command with pre-split arguments.
// This preserves arguments that contain spaces.
func RunBenchcabArgs(ctx context.Context, env []string, binary, workDir string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	// Set env: os.Environ() first, then custom env overrides on top.
	// In Go's exec.Cmd, when duplicate keys exist, the last one wins.
	newEnv := append([]string{}, os.Environ()...)
	newEnv = append(newEnv, env...)
	if nolog {
		newEnv = append(newEnv, "BENCHCAB_NO_LOG=true")
	}
	cmd.Env = newEnv

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}
