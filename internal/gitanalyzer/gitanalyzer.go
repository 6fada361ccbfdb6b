// Package gitanalyzer implements the git contribution analyzer (C4): it
// shells out to the git CLI to compute per-file commit counts, authorship,
// and line deltas across a repository's history.
package gitanalyzer

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/coderisk/ingestworker/internal/model"
)

// codeExtensions is the whitelist of file extensions that contribute to
// per-file statistics; non-code files touched by a commit are ignored.
var codeExtensions = map[string]struct{}{
	".rs": {}, ".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".tsx": {}, ".jsx": {},
	".java": {}, ".c": {}, ".cpp": {}, ".h": {}, ".hpp": {}, ".cs": {}, ".rb": {},
	".php": {}, ".swift": {}, ".kt": {}, ".scala": {},
}

const recordSep = "\x01COMMIT\x01"

// CommitRecord is one entry in the bounded recent-commits buffer.
type CommitRecord struct {
	SHA         string
	AuthorEmail string
	Timestamp   int64
}

// Result is the full output of analyzing a repository's history.
type Result struct {
	Contributions map[string]*model.FileContribution
	RecentCommits []CommitRecord
}

type fileAccumulator struct {
	commitCount  int
	lastModified int64
	contributors map[string]int
	linesAdded   int
	linesDeleted int
	linesChanged int
}

// Analyze walks commit history from HEAD in reverse-chronological order via
// `git log --first-parent --numstat`, which diffs each commit against its
// first parent (or the empty tree for the initial commit) in a single pass.
// maxCommits bounds only the RecentCommits buffer; every commit in history
// still contributes to the returned FileContribution statistics.
func Analyze(ctx context.Context, repoPath string, maxCommits int) (*Result, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--first-parent", "--numstat",
		"--format="+recordSep+"%H|%ae|%at")
	cmd.Dir = repoPath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	files := make(map[string]*fileAccumulator)
	var recent []CommitRecord

	var curSHA, curAuthor string
	var curTime int64

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, recordSep) {
			header := strings.TrimPrefix(line, recordSep)
			parts := strings.SplitN(header, "|", 3)
			if len(parts) != 3 {
				continue // malformed record, skip (per-commit errors are non-fatal)
			}
			curSHA = parts[0]
			curAuthor = parts[1]
			ts, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				continue
			}
			curTime = ts
			if len(recent) < maxCommits {
				recent = append(recent, CommitRecord{SHA: curSHA, AuthorEmail: curAuthor, Timestamp: curTime})
			}
			continue
		}

		applyNumstatLine(files, line, curAuthor, curTime)
	}
	if err := scanner.Err(); err != nil {
		cmd.Wait()
		return nil, fmt.Errorf("git log: reading output: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	contributions := make(map[string]*model.FileContribution, len(files))
	for filePath, acc := range files {
		contributions[filePath] = finalize(filePath, acc)
	}

	return &Result{Contributions: contributions, RecentCommits: recent}, nil
}

func applyNumstatLine(files map[string]*fileAccumulator, line, author string, timestamp int64) {
	// numstat lines are tab-separated: added\tdeleted\tpath (or "-" for binary files)
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return
	}
	filePath := fields[2]
	if _, ok := codeExtensions[path.Ext(filePath)]; !ok {
		return
	}

	acc, ok := files[filePath]
	if !ok {
		acc = &fileAccumulator{contributors: make(map[string]int)}
		files[filePath] = acc
	}

	acc.commitCount++
	if timestamp > acc.lastModified {
		acc.lastModified = timestamp
	}
	acc.contributors[author]++

	added, derr := strconv.Atoi(fields[0])
	deleted, aerr := strconv.Atoi(fields[1])
	if derr == nil && aerr == nil {
		acc.linesAdded += added
		acc.linesDeleted += deleted
		acc.linesChanged += added + deleted
	}
	// "-\t-\tpath" (binary file) leaves line counts untouched.
}

func finalize(filePath string, acc *fileAccumulator) *model.FileContribution {
	contributors := make([]model.Contributor, 0, len(acc.contributors))
	for email, count := range acc.contributors {
		contributors = append(contributors, model.Contributor{Email: email, CommitCount: count})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].CommitCount != contributors[j].CommitCount {
			return contributors[i].CommitCount > contributors[j].CommitCount
		}
		return contributors[i].Email < contributors[j].Email
	})

	primary := "unknown"
	if len(contributors) > 0 {
		primary = contributors[0].Email
	}

	return &model.FileContribution{
		Path:          filePath,
		CommitCount:   acc.commitCount,
		LastModified:  acc.lastModified,
		PrimaryAuthor: primary,
		Contributors:  contributors,
		LinesAdded:    acc.linesAdded,
		LinesDeleted:  acc.linesDeleted,
		LinesChanged:  acc.linesChanged,
	}
}
