// Package ops exposes every environment-touching primitive the updater needs
// as an independently mockable operation: filesystem checks and copies, git
// porcelain calls, credential retrieval, and the GitHub releases API. Each
// operation is a single action with no branching of its own, so the updater's
// sequencing can be exercised against a recording fake in tests.
package ops

import "context"

// 🚀 Release is the parsed result of creating a release: the tag that was
// published and the browsable URL reported by the API.
type Release struct {
	TagName string
	URL     string
}

// 🎯 Operations is the capability interface between the updater and the
// outside world. The real implementation is System; tests substitute a fake.
type Operations interface {
	// DirExists reports whether dir exists and is a directory.
	DirExists(ctx context.Context, dir string) bool

	// CopyFile copies src to dst byte-for-byte, creating parent directories.
	CopyFile(ctx context.Context, src, dst string) error

	// ReadFile returns the contents of path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile writes data to path, creating parent directories.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Glob returns the sorted paths matching pattern, empty if none match.
	Glob(ctx context.Context, pattern string) ([]string, error)

	// RepoIsClean reports whether dir has no uncommitted tracked changes.
	// Any git failure counts as not clean.
	RepoIsClean(ctx context.Context, dir string) bool

	// CurrentBranch returns the branch dir is checked out on.
	CurrentBranch(ctx context.Context, dir string) (string, error)

	// Pull fetches and merges the latest target state, returning git's output.
	Pull(ctx context.Context) (string, error)

	// Push publishes local commits, returning git's output.
	Push(ctx context.Context) (string, error)

	// StageFiles adds paths to the index. An empty set is a no-op.
	StageFiles(ctx context.Context, paths []string) error

	// AnyStaged reports whether the index holds staged changes.
	AnyStaged(ctx context.Context) (bool, error)

	// CommitStaged commits the index with the given message.
	CommitStaged(ctx context.Context, message string) error

	// FetchCredential returns the secret for account, or "" when unavailable.
	FetchCredential(ctx context.Context, account string) string

	// LatestReleaseTag returns the tag of the newest release, or the "v0"
	// baseline when the repository has no releases yet.
	LatestReleaseTag(ctx context.Context, org, repo, token string) (string, error)

	// CreateRelease publishes a new release under tag.
	CreateRelease(ctx context.Context, org, repo, token, tag string) (*Release, error)
}
