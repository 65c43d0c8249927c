// Package updater drives one end-to-end publishing run: precondition gates,
// the copy/convert loop, batch commits, push, and release publication, in a
// strict order where the first failed gate aborts before any mutation.
package updater

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/speclabs/specpub/pkg/config"
	"github.com/speclabs/specpub/pkg/convert"
	"github.com/speclabs/specpub/pkg/log"
	"github.com/speclabs/specpub/pkg/ops"
	"github.com/speclabs/specpub/pkg/version"
	"gitlab.com/tozd/go/errors"
)

// Commit messages for the two batches. The fixtures batch and the
// specification batch always commit separately.
const (
	fixturesCommitMessage = "Update bundled fixtures"
	specCommitMessage     = "Update OpenAPI specification"
)

// AbortError is a failed precondition gate: a human-readable reason to stop
// before anything has been mutated. It is the only expected failure kind;
// everything else propagates with whatever diagnostic the underlying call
// produced.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return e.Message
}

func abortf(format string, args ...any) error {
	return &AbortError{Message: fmt.Sprintf(format, args...)}
}

// 🔧 Options contains the updater's collaborators.
type Options struct {
	// Config is the immutable run configuration.
	Config *config.Config
	// Ops is the operations provider for every side effect.
	Ops ops.Operations
	// Console narrates progress to the operator.
	Console *log.Console
}

// 🎮 Updater runs the publishing workflow.
type Updater struct {
	cfg     *config.Config
	ops     ops.Operations
	console *log.Console
}

// 🏭 New creates a new updater with the given options.
func New(opts Options) (*Updater, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Ops == nil {
		return nil, errors.Errorf("operations provider is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console is required")
	}
	return &Updater{
		cfg:     opts.Config,
		ops:     opts.Ops,
		console: opts.Console,
	}, nil
}

// Run executes one publishing run. A nil return is success, including the
// "nothing to publish" case. An *AbortError is a failed precondition gate;
// any other error is a propagated failure from git or the release API.
func (u *Updater) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	u.console.Stepf("Fetching credential for %s", u.cfg.CredentialAccount)
	token := u.ops.FetchCredential(ctx, u.cfg.CredentialAccount)
	if token == "" {
		return abortf("no credential available for %s; re-authenticate with %s and retry",
			u.cfg.CredentialAccount, u.cfg.CredentialCommand)
	}

	u.console.Stepf("Checking source checkout %s", u.cfg.Source)
	if !u.ops.DirExists(ctx, u.cfg.Source) {
		return abortf("source directory %s does not exist", u.cfg.Source)
	}

	branch, err := u.ops.CurrentBranch(ctx, u.cfg.Source)
	if err != nil {
		return errors.Errorf("resolving source branch: %w", err)
	}
	if branch != u.cfg.Branch {
		return abortf("source checkout is on branch %q, expected %q", branch, u.cfg.Branch)
	}

	u.console.Stepf("Checking target checkout %s", u.cfg.Target)
	if !u.ops.RepoIsClean(ctx, u.cfg.Target) {
		return abortf("target repository %s has uncommitted changes", u.cfg.Target)
	}

	u.console.Step("Pulling latest target state")
	pullOut, err := u.ops.Pull(ctx)
	if err != nil {
		return errors.Errorf("pulling target repository: %w", err)
	}
	logger.Debug().Str("output", pullOut).Msg("pulled target repository")

	u.console.Step("Syncing specification and fixture files")
	for _, f := range u.cfg.Files() {
		if err := u.syncFile(ctx, f); err != nil {
			return errors.Errorf("syncing %s: %w", f.Name, err)
		}
	}

	// The cleanliness re-check runs only after all four copy/convert pairs
	// have completed; an unchanged target is a successful run, not an error.
	if u.ops.RepoIsClean(ctx, u.cfg.Target) {
		u.console.Success("Target is unchanged, nothing to publish")
		return nil
	}

	u.console.Step("Committing fixtures")
	if _, err := u.commitBatch(ctx, u.cfg.FixturesPattern(), fixturesCommitMessage); err != nil {
		return err
	}

	u.console.Step("Committing specification")
	specCommitted, err := u.commitBatch(ctx, u.cfg.SpecPattern(), specCommitMessage)
	if err != nil {
		return err
	}

	if u.cfg.DryRun {
		u.console.Skip("Dry run: not pushing")
	} else {
		u.console.Step("Pushing commits")
		pushOut, err := u.ops.Push(ctx)
		if err != nil {
			return errors.Errorf("pushing target repository: %w", err)
		}
		logger.Debug().Str("output", pushOut).Msg("pushed target repository")
	}

	if u.cfg.DryRun {
		u.console.Skip("Dry run: not publishing a release")
		return nil
	}
	if !specCommitted {
		// A release with no specification change is meaningless, even when
		// the fixtures batch committed.
		u.console.Skip("No specification commit, skipping release")
		return nil
	}

	u.console.Step("Publishing release")
	release, err := u.publishRelease(ctx, token)
	if err != nil {
		return err
	}
	u.console.Successf("Published release %s: %s", release.TagName, release.URL)

	return nil
}

// syncFile copies the JSON document into the target tree and writes its YAML
// sibling. There is no per-file recovery: the caller aborts on any failure.
func (u *Updater) syncFile(ctx context.Context, f config.SpecFile) error {
	if err := u.ops.CopyFile(ctx, f.Source, f.Target); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	data, err := u.ops.ReadFile(ctx, f.Target)
	if err != nil {
		return errors.Errorf("reading copied file: %w", err)
	}

	converted, err := convert.JSONToYAML(data)
	if err != nil {
		return errors.Errorf("converting to YAML: %w", err)
	}

	if err := u.ops.WriteFile(ctx, f.Converted, converted); err != nil {
		return errors.Errorf("writing converted file: %w", err)
	}

	u.console.LogFileSync(log.FileSync{
		Name:      f.Name,
		Target:    f.Target,
		Converted: f.Converted,
	})

	return nil
}

// commitBatch stages the files matching pattern and commits them under
// message. A batch that stages nothing logs and continues; it is never an
// error. Returns whether a commit was made.
func (u *Updater) commitBatch(ctx context.Context, pattern, message string) (bool, error) {
	matches, err := u.ops.Glob(ctx, pattern)
	if err != nil {
		return false, errors.Errorf("matching %s: %w", pattern, err)
	}

	if err := u.ops.StageFiles(ctx, matches); err != nil {
		return false, errors.Errorf("staging batch %s: %w", pattern, err)
	}

	staged, err := u.ops.AnyStaged(ctx)
	if err != nil {
		return false, errors.Errorf("checking staged files: %w", err)
	}
	if !staged {
		u.console.Skipf("Nothing staged for %s", pattern)
		return false, nil
	}

	if err := u.ops.CommitStaged(ctx, message); err != nil {
		return false, errors.Errorf("committing batch %s: %w", pattern, err)
	}

	return true, nil
}

// publishRelease increments the latest tag and creates the release.
func (u *Updater) publishRelease(ctx context.Context, token string) (*ops.Release, error) {
	latest, err := u.ops.LatestReleaseTag(ctx, u.cfg.Org, u.cfg.Repo, token)
	if err != nil {
		return nil, errors.Errorf("fetching latest release tag: %w", err)
	}

	next, err := version.IncrementTag(latest)
	if err != nil {
		return nil, errors.Errorf("incrementing release tag: %w", err)
	}

	release, err := u.ops.CreateRelease(ctx, u.cfg.Org, u.cfg.Repo, token, next)
	if err != nil {
		return nil, errors.Errorf("creating release: %w", err)
	}

	return release, nil
}
