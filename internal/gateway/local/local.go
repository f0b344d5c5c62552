// Package local implements the repository gateway against a local git
// working copy. Branches become local refs; pull requests have no
// local equivalent and are reported as unsupported.
package local

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/log"
)

// Gateway manipulates branches in a repository on disk.
type Gateway struct {
	repo   *git.Repository
	logger *log.Logger
}

// Open opens the repository containing dir.
func Open(dir string) (*Gateway, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGatewayConfig,
			fmt.Sprintf("not a git repository: %s", dir), err).
			WithSuggestion("Run 'git init' or point repository.path at an existing clone")
	}
	return &Gateway{repo: repo, logger: log.Default()}, nil
}

// BranchExists reports whether a local branch ref is present.
func (g *Gateway) BranchExists(name string) bool {
	_, err := g.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// CreateBranch creates refs/heads/<name> at the base branch's head.
// An empty baseBranch means the current HEAD. Creating a branch that
// already exists succeeds without moving it.
func (g *Gateway) CreateBranch(_ context.Context, name, baseBranch string) error {
	if g.BranchExists(name) {
		g.logger.With("branch", name).Debug("branch already exists")
		return nil
	}

	var base *plumbing.Reference
	var err error
	if baseBranch == "" {
		base, err = g.repo.Head()
	} else {
		base, err = g.repo.Reference(plumbing.NewBranchReferenceName(baseBranch), true)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("failed to resolve base branch %q", baseBranch), err)
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), base.Hash())
	if err := g.repo.Storer.SetReference(ref); err != nil {
		return errors.Wrap(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("failed to create branch %s", name), err)
	}

	g.logger.With("branch", name, "base", baseBranch).Debug("local branch created")
	return nil
}

// CreatePullRequest is not supported for a local repository.
func (g *Gateway) CreatePullRequest(_ context.Context, _, _, _, _ string) (string, error) {
	return "", errors.New(errors.ErrCodeGatewayUnsupported,
		"pull requests are not supported by the local repository gateway").
		WithSuggestion("Configure the github gateway to open pull requests")
}
