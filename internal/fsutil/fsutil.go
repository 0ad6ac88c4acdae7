// Package fsutil provides file utility functions for laying out and
// cleaning benchmark working directories.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CopyFile copies a regular file preserving its permissions. The
// destination is overwritten when it exists.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source %q is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}

	// An existing destination keeps its old mode, enforce the source's.
	err = out.Chmod(info.Mode().Perm())
	if err != nil {
		out.Close()
		return fmt.Errorf("chmod destination: %w", err)
	}

	return out.Close()
}

// CopyTree recursively copies a directory, merging into existing
// directories and overwriting existing files. Symlinks are followed.
func CopyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read source directory: %w", err)
	}

	err = os.MkdirAll(dst, 0o755)
	if err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("stat %q: %w", srcPath, err)
		}

		switch {
		case info.IsDir():
			err = CopyTree(srcPath, dstPath)
		default:
			err = CopyFile(srcPath, dstPath)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// NextPath returns the next free filename in dir for a sequentially
// numbered pattern such as "rev_number-*.log". The "*" is replaced with
// one plus the highest index already present, starting at 1.
func NextPath(dir, pattern string) (string, error) {
	star := strings.Index(pattern, "*")
	if star < 0 {
		return "", fmt.Errorf("pattern %q has no wildcard", pattern)
	}
	prefix, suffix := pattern[:star], pattern[star+1:]

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", pattern, err)
	}

	maxIndex := 0
	for _, m := range matches {
		name := filepath.Base(m)
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		index, err := strconv.Atoi(name[len(prefix) : len(name)-len(suffix)])
		if err != nil {
			continue
		}
		if index > maxIndex {
			maxIndex = index
		}
	}

	return strings.Replace(pattern, "*", strconv.Itoa(maxIndex+1), 1), nil
}
