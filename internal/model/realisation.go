package model

import (
	"fmt"
	"path"
)

// Realisation is a single CABLE version under test.
type Realisation struct {
	// Name identifies the realisation. Optional, defaults to a name
	// derived from the repository reference.
	Name string
	// Repo describes where the source code comes from.
	Repo RepoSpec
	// Patch is a namelist patch applied on top of the science
	// configuration for this realisation only.
	Patch map[string]interface{}
	// PatchRemove lists namelist parameters removed for this realisation.
	PatchRemove map[string]interface{}
	// BuildScript is a path, relative to the checkout, of a user supplied
	// build script that replaces the default build.
	BuildScript string
}

// RepoSpec describes a source repository. Exactly one of the fields must
// be set.
type RepoSpec struct {
	Git   *GitRepoSpec
	SVN   *SVNRepoSpec
	Local *LocalRepoSpec
}

// GitRepoSpec checks out a branch from a git repository.
type GitRepoSpec struct {
	// URL of the repository. Optional, defaults to the upstream CABLE
	// repository.
	URL string
	// Branch to check out.
	Branch string
	// Commit resets the branch to a specific commit. Optional.
	Commit string
}

// SVNRepoSpec checks out a branch from the CABLE subversion repository.
type SVNRepoSpec struct {
	// BranchPath is the path relative to the SVN root, for example
	// "trunk" or "branches/Users/foo/my-branch".
	BranchPath string
	// Revision to check out. Optional, zero means HEAD.
	Revision int
}

// LocalRepoSpec points at an existing checkout on the local filesystem.
type LocalRepoSpec struct {
	Path string
}

// Validate validates the realisation.
func (r *Realisation) Validate() error {
	set := 0
	if r.Repo.Git != nil {
		set++
		if r.Repo.Git.Branch == "" {
			return fmt.Errorf("git repo branch is required: %w", ErrNotValid)
		}
	}
	if r.Repo.SVN != nil {
		set++
		if r.Repo.SVN.BranchPath == "" {
			return fmt.Errorf("svn repo branch_path is required: %w", ErrNotValid)
		}
	}
	if r.Repo.Local != nil {
		set++
		if r.Repo.Local.Path == "" {
			return fmt.Errorf("local repo path is required: %w", ErrNotValid)
		}
	}

	if set != 1 {
		return fmt.Errorf("realisation must have exactly one of git, svn or local repo: %w", ErrNotValid)
	}

	return nil
}

// SourceSubdir returns the subdirectory of a checkout holding the CABLE
// sources. Git and local checkouts keep them under "src", SVN branches
// have them at the top level.
func (r *Realisation) SourceSubdir() string {
	if r.Repo.SVN != nil {
		return ""
	}
	return "src"
}

// ResolvedName returns the realisation name, deriving one from the
// repository reference when no explicit name is set.
func (r *Realisation) ResolvedName() string {
	if r.Name != "" {
		return r.Name
	}

	switch {
	case r.Repo.Git != nil:
		return r.Repo.Git.Branch
	case r.Repo.SVN != nil:
		return path.Base(r.Repo.SVN.BranchPath)
	case r.Repo.Local != nil:
		return path.Base(r.Repo.Local.Path)
	}

	return ""
}
