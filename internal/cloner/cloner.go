// Package cloner clones a remote repository into a scoped temporary
// directory for the duration of a single ingestion job.
package cloner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	ingesterrors "github.com/coderisk/ingestworker/internal/errors"
)

// Clone is a cloned working tree plus its cleanup.
type Clone struct {
	// Path is the absolute path to the cloned working tree.
	Path string

	dir string
}

// Close removes the clone's temporary directory. Safe to call more than
// once; safe to call even if the clone never fully succeeded.
func (c *Clone) Close() error {
	if c.dir == "" {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// CloneRepository performs a shallow, single-branch clone of url into a
// UUID-suffixed directory under the system temp dir. The caller must call
// Close on every exit path, success or failure, to guarantee cleanup.
func CloneRepository(ctx context.Context, url, branch, gitToken string) (*Clone, error) {
	dir, err := os.MkdirTemp("", "ingestworker-"+uuid.NewString())
	if err != nil {
		return nil, ingesterrors.ConnectivityError(err, "failed to create scratch directory")
	}

	repoPath := filepath.Join(dir, "repo")
	args := []string{"clone", "--depth", "1", "--single-branch"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, authenticatedURL(url, gitToken), repoPath)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return nil, ingesterrors.ConnectivityError(err, "git clone failed: "+redactToken(string(output), gitToken))
	}

	return &Clone{Path: repoPath, dir: dir}, nil
}

// authenticatedURL injects an https token into the clone URL when one is
// supplied and the URL starts with https://; any other URL is returned as is.
func authenticatedURL(url, token string) string {
	if token == "" || !strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://x-access-token:" + token + "@" + strings.TrimPrefix(url, "https://")
}

func redactToken(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "***")
}

// NormalizePath rewrites an absolute path under a clone's working tree into
// the repository-relative, forward-slash path persisted on every graph
// identifier.
func NormalizePath(clonePath, absPath string) (string, error) {
	rel, err := filepath.Rel(clonePath, absPath)
	if err != nil {
		return "", fmt.Errorf("path %q is not under clone root %q: %w", absPath, clonePath, err)
	}
	return filepath.ToSlash(rel), nil
}
