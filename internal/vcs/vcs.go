// Package vcs handles checking out realisation source code from the
// different version control systems benchcab supports.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// Repo is a checkout of a single realisation.
type Repo interface {
	// Checkout fetches the source code into the realisation path.
	Checkout(ctx context.Context) error
	// Revision returns a human readable description of the checked out
	// revision.
	Revision(ctx context.Context) (string, error)
	// Path returns the local checkout path.
	Path() string
}

// New returns the Repo for a repository spec. The source code is checked
// out into path.
func New(spec model.RepoSpec, path string, runner syscmd.Runner, logger log.Logger) (Repo, error) {
	switch {
	case spec.Git != nil:
		url := spec.Git.URL
		if url == "" {
			url = conventions.CableGitURL
		}
		return gitRepo{
			url:    url,
			branch: spec.Git.Branch,
			commit: spec.Git.Commit,
			path:   path,
			runner: runner,
			logger: logger,
		}, nil

	case spec.SVN != nil:
		return svnRepo{
			root:       conventions.CableSVNRoot,
			branchPath: spec.SVN.BranchPath,
			revision:   spec.SVN.Revision,
			path:       path,
			runner:     runner,
			logger:     logger,
		}, nil

	case spec.Local != nil:
		return localRepo{
			localPath: spec.Local.Path,
			path:      path,
			logger:    logger,
		}, nil
	}

	return nil, fmt.Errorf("repository spec has no backend: %w", model.ErrNotValid)
}

type gitRepo struct {
	url    string
	branch string
	commit string
	path   string
	runner syscmd.Runner
	logger log.Logger
}

func (r gitRepo) Checkout(ctx context.Context) error {
	err := r.runner.Run(ctx, syscmd.Command{
		Argv: []string{"git", "clone", "--branch", r.branch, "--", r.url, r.path},
	})
	if err != nil {
		return fmt.Errorf("could not clone %q: %w", r.url, err)
	}

	if r.commit != "" {
		r.logger.Debugf("Resetting %s to commit %s (hard reset)", r.branch, r.commit)
		err := r.runner.Run(ctx, syscmd.Command{
			Argv: []string{"git", "-C", r.path, "reset", "--hard", r.commit},
		})
		if err != nil {
			return fmt.Errorf("could not reset to commit %q: %w", r.commit, err)
		}
	}

	rev, err := r.Revision(ctx)
	if err != nil {
		return err
	}
	r.logger.Infof("Successfully checked out %s - %s", r.branch, rev)

	return nil
}

func (r gitRepo) Revision(ctx context.Context) (string, error) {
	out, err := r.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"git", "-C", r.path, "rev-parse", "HEAD"},
	})
	if err != nil {
		return "", fmt.Errorf("could not get git revision: %w", err)
	}

	return "commit " + strings.TrimSpace(out), nil
}

func (r gitRepo) Path() string { return r.path }

type svnRepo struct {
	root       string
	branchPath string
	revision   int
	path       string
	runner     syscmd.Runner
	logger     log.Logger
}

func (r svnRepo) Checkout(ctx context.Context) error {
	argv := []string{"svn", "checkout"}
	if r.revision != 0 {
		argv = append(argv, "-r", strconv.Itoa(r.revision))
	}
	argv = append(argv, r.root+"/"+r.branchPath, r.path)

	err := r.runner.Run(ctx, syscmd.Command{Argv: argv})
	if err != nil {
		return fmt.Errorf("could not check out %q: %w", r.branchPath, err)
	}

	rev, err := r.Revision(ctx)
	if err != nil {
		return err
	}
	r.logger.Infof("Successfully checked out %s - %s", filepath.Base(r.path), rev)

	return nil
}

func (r svnRepo) Revision(ctx context.Context) (string, error) {
	out, err := r.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"svn", "info", "--show-item", "last-changed-revision", r.path},
	})
	if err != nil {
		return "", fmt.Errorf("could not get svn revision: %w", err)
	}

	return "last-changed-revision " + strings.TrimSpace(out), nil
}

func (r svnRepo) Path() string { return r.path }

type localRepo struct {
	localPath string
	path      string
	logger    log.Logger
}

func (r localRepo) Checkout(ctx context.Context) error {
	err := os.Symlink(r.localPath, r.path)
	if err != nil {
		return fmt.Errorf("could not link local checkout: %w", err)
	}
	r.logger.Infof("Created symlink %s pointing to %s", r.path, r.localPath)

	return nil
}

func (r localRepo) Revision(ctx context.Context) (string, error) {
	abs, err := filepath.Abs(r.localPath)
	if err != nil {
		return "", fmt.Errorf("could not resolve local path: %w", err)
	}

	return "local CABLE build: " + abs, nil
}

func (r localRepo) Path() string { return r.path }
