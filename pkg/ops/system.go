// Copyright 2025 speclabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ops

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options configures the real operations provider.
type Options struct {
	// WorkDir is the target repository checkout all git calls are scoped to.
	WorkDir string
	// CredentialCommand is the executable queried for the operator's secret.
	CredentialCommand string
}

// 🎮 System is the real Operations implementation: local filesystem, git
// subprocesses scoped to the target checkout, the credential helper, and the
// GitHub releases API.
type System struct {
	workDir  string
	credCmd  string
	releases GitHubClientFactory
}

var _ Operations = (*System)(nil)

// 🏭 NewSystem creates the real operations provider.
func NewSystem(opts Options) (*System, error) {
	if opts.WorkDir == "" {
		return nil, errors.Errorf("work dir is required")
	}
	if opts.CredentialCommand == "" {
		return nil, errors.Errorf("credential command is required")
	}
	return &System{
		workDir:  opts.WorkDir,
		credCmd:  opts.CredentialCommand,
		releases: newGitHubClient,
	}, nil
}

func (s *System) DirExists(ctx context.Context, dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func (s *System) CopyFile(ctx context.Context, src, dst string) error {
	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Msg("copying file")

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Errorf("creating directory for %s: %w", dst, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating target file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Errorf("copying %s to %s: %w", src, dst, err)
	}

	return nil
}

func (s *System) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

func (s *System) WriteFile(ctx context.Context, path string, data []byte) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("writing file")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

func (s *System) Glob(ctx context.Context, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Errorf("matching pattern %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// RepoIsClean treats any git failure as "not clean" so a broken checkout can
// never pass the precondition gates. Untracked files are excluded: they are
// not publishable state.
func (s *System) RepoIsClean(ctx context.Context, dir string) bool {
	out, err := s.git(ctx, dir, "status", "--porcelain", "-uno")
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("git status failed, treating as dirty")
		return false
	}
	return strings.TrimSpace(out) == ""
}

func (s *System) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := s.git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Errorf("resolving current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *System) Pull(ctx context.Context) (string, error) {
	out, err := s.git(ctx, s.workDir, "pull")
	if err != nil {
		return "", errors.Errorf("pulling latest: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *System) Push(ctx context.Context) (string, error) {
	out, err := s.git(ctx, s.workDir, "push")
	if err != nil {
		return "", errors.Errorf("pushing commits: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *System) StageFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Strs("paths", paths).Msg("staging files")

	args := append([]string{"add", "--"}, paths...)
	if _, err := s.git(ctx, s.workDir, args...); err != nil {
		return errors.Errorf("staging files: %w", err)
	}
	return nil
}

func (s *System) AnyStaged(ctx context.Context) (bool, error) {
	// diff --cached --quiet exits 1 when the index differs from HEAD.
	cmd := exec.CommandContext(ctx, "git", "-C", s.workDir, "diff", "--cached", "--quiet")
	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, errors.Errorf("checking index state: %w", err)
}

// CommitStaged opens the operator's editor seeded with message, matching the
// interactive commit the publishing runbook has always used.
func (s *System) CommitStaged(ctx context.Context, message string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", s.workDir, "commit", "-e", "-m", message)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Errorf("committing staged files: %w", err)
	}
	return nil
}

// FetchCredential returns "" on any failure: an unavailable credential is a
// guarded precondition for the updater, not an error here.
func (s *System) FetchCredential(ctx context.Context, account string) string {
	out, err := exec.CommandContext(ctx, s.credCmd, account).Output()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("account", account).Msg("credential command failed")
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (s *System) git(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	out, err := exec.CommandContext(ctx, "git", fullArgs...).CombinedOutput()
	if err != nil {
		return "", errors.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
