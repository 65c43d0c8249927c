package ops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func newTestSystem(t *testing.T, workDir string) *System {
	t.Helper()
	s, err := NewSystem(Options{WorkDir: workDir, CredentialCommand: "echo"})
	require.NoError(t, err, "creating system should succeed")
	return s
}

// initRepo creates a git repository with one commit on branch main.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init")
	run("checkout", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("seed\n"), 0644))
	run("add", "README.md")
	run("commit", "-m", "seed")

	return dir
}

func TestNewSystem(t *testing.T) {
	_, err := NewSystem(Options{CredentialCommand: "echo"})
	require.Error(t, err, "missing work dir should be rejected")
	assert.Contains(t, err.Error(), "work dir is required")

	_, err = NewSystem(Options{WorkDir: "/tmp"})
	require.Error(t, err, "missing credential command should be rejected")
	assert.Contains(t, err.Error(), "credential command is required")
}

func TestDirExists(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	s := newTestSystem(t, dir)

	assert.True(t, s.DirExists(ctx, dir), "existing directory should be found")
	assert.False(t, s.DirExists(ctx, filepath.Join(dir, "missing")), "missing directory should not be found")

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.False(t, s.DirExists(ctx, file), "a plain file is not a directory")
}

func TestCopyFile(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	s := newTestSystem(t, dir)

	src := filepath.Join(dir, "spec3.json")
	content := []byte(`{"openapi":"3.0.0"}`)
	require.NoError(t, os.WriteFile(src, content, 0644))

	dst := filepath.Join(dir, "nested", "deep", "spec3.json")
	require.NoError(t, s.CopyFile(ctx, src, dst), "copy should succeed")

	got, err := os.ReadFile(dst)
	require.NoError(t, err, "copied file should be readable")
	assert.Equal(t, content, got, "copy should bit-match the source")

	err = s.CopyFile(ctx, filepath.Join(dir, "missing.json"), dst)
	require.Error(t, err, "missing source should fail")
	assert.Contains(t, err.Error(), "opening source file")
}

func TestWriteAndReadFile(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	s := newTestSystem(t, dir)

	path := filepath.Join(dir, "out", "spec3.yaml")
	require.NoError(t, s.WriteFile(ctx, path, []byte("openapi: 3.0.0\n")), "write should succeed")

	got, err := s.ReadFile(ctx, path)
	require.NoError(t, err, "read should succeed")
	assert.Equal(t, "openapi: 3.0.0\n", string(got), "content should round-trip")

	_, err = s.ReadFile(ctx, filepath.Join(dir, "missing"))
	require.Error(t, err, "missing file should fail")
}

func TestGlob(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	s := newTestSystem(t, dir)

	for _, name := range []string{"spec3.json", "spec3.yaml", "fixtures3.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	matches, err := s.Glob(ctx, filepath.Join(dir, "spec*"))
	require.NoError(t, err, "glob should succeed")
	assert.Equal(t, []string{
		filepath.Join(dir, "spec3.json"),
		filepath.Join(dir, "spec3.yaml"),
	}, matches, "matches should be sorted")

	matches, err = s.Glob(ctx, filepath.Join(dir, "nothing*"))
	require.NoError(t, err, "empty glob is not an error")
	assert.Empty(t, matches, "no matches expected")
}

func TestRepoIsClean(t *testing.T) {
	ctx := testContext(t)
	dir := initRepo(t)
	s := newTestSystem(t, dir)

	assert.True(t, s.RepoIsClean(ctx, dir), "fresh repository should be clean")

	// Untracked files do not count.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x"), 0644))
	assert.True(t, s.RepoIsClean(ctx, dir), "untracked files are excluded")

	// A modified tracked file does.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644))
	assert.False(t, s.RepoIsClean(ctx, dir), "modified tracked file should be dirty")

	assert.False(t, s.RepoIsClean(ctx, t.TempDir()), "a non-repository is never clean")
}

func TestCurrentBranch(t *testing.T) {
	ctx := testContext(t)
	dir := initRepo(t)
	s := newTestSystem(t, dir)

	branch, err := s.CurrentBranch(ctx, dir)
	require.NoError(t, err, "branch lookup should succeed")
	assert.Equal(t, "main", branch, "branch should match checkout")

	_, err = s.CurrentBranch(ctx, t.TempDir())
	require.Error(t, err, "non-repository should fail")
}

func TestStageCommitFlow(t *testing.T) {
	t.Setenv("GIT_EDITOR", "true") // keep the interactive commit non-interactive

	ctx := testContext(t)
	dir := initRepo(t)
	s := newTestSystem(t, dir)

	staged, err := s.AnyStaged(ctx)
	require.NoError(t, err, "index check should succeed")
	assert.False(t, staged, "nothing staged initially")

	require.NoError(t, s.StageFiles(ctx, nil), "empty stage set is a no-op")

	path := filepath.Join(dir, "spec3.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openapi":"3.0.0"}`), 0644))
	require.NoError(t, s.StageFiles(ctx, []string{path}), "staging should succeed")

	staged, err = s.AnyStaged(ctx)
	require.NoError(t, err, "index check should succeed")
	assert.True(t, staged, "file should be staged")

	require.NoError(t, s.CommitStaged(ctx, "Update OpenAPI specification"), "commit should succeed")

	staged, err = s.AnyStaged(ctx)
	require.NoError(t, err, "index check should succeed")
	assert.False(t, staged, "index should be empty after commit")
	assert.True(t, s.RepoIsClean(ctx, dir), "repository should be clean after commit")
}

func TestFetchCredential(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	s := newTestSystem(t, dir) // credential command is echo
	assert.Equal(t, "alice", s.FetchCredential(ctx, "alice"), "echo returns the account")

	failing, err := NewSystem(Options{WorkDir: dir, CredentialCommand: "false"})
	require.NoError(t, err)
	assert.Empty(t, failing.FetchCredential(ctx, "alice"), "a failing command yields an empty credential")

	missing, err := NewSystem(Options{WorkDir: dir, CredentialCommand: "specpub-no-such-helper"})
	require.NoError(t, err)
	assert.Empty(t, missing.FetchCredential(ctx, "alice"), "a missing command yields an empty credential")
}
