package gitanalyzer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// initTestRepo builds a scratch git repository with a small, deterministic
// commit history and returns its path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init", "-q")
	run("config", "user.email", "alice@example.com")
	run("config", "user.name", "Alice")

	mainGo := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(mainGo, []byte("package main\n\nfunc main() {}\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "initial commit")

	require.NoError(t, os.WriteFile(mainGo, []byte("package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "add greeting")

	run("config", "user.email", "bob@example.com")
	run("config", "user.name", "Bob")
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# hello\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "add readme")

	return dir
}

func TestAnalyze_AggregatesCommitCountsAndAuthors(t *testing.T) {
	repo := initTestRepo(t)

	result, err := Analyze(context.Background(), repo, 10)
	require.NoError(t, err)

	mainContrib, ok := result.Contributions["main.go"]
	require.True(t, ok)
	require.Equal(t, 2, mainContrib.CommitCount)
	require.Equal(t, "alice@example.com", mainContrib.PrimaryAuthor)
	require.Len(t, mainContrib.Contributors, 1)
	require.Greater(t, mainContrib.LinesAdded, 0)

	// README.md is not in the code-file whitelist.
	_, hasReadme := result.Contributions["README.md"]
	require.False(t, hasReadme)
}

func TestAnalyze_RecentCommitsBounded(t *testing.T) {
	repo := initTestRepo(t)

	result, err := Analyze(context.Background(), repo, 2)
	require.NoError(t, err)
	require.Len(t, result.RecentCommits, 2)
}

func TestAnalyze_NonexistentRepoReturnsError(t *testing.T) {
	_, err := Analyze(context.Background(), t.TempDir(), 10)
	require.Error(t, err)
}
