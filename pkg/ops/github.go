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
	"net/http"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/speclabs/specpub/pkg/version"
	"gitlab.com/tozd/go/errors"
)

// GitHubClient defines the GitHub API operations we need
type GitHubClient interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
}

// GitHubClientFactory builds an authenticated client for one call. The token
// is per-run state (it comes out of the credential helper), so clients are
// never cached on the System.
type GitHubClientFactory func(token string) GitHubClient

func newGitHubClient(token string) GitHubClient {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &githubClientWrapper{client: client}
}

// githubClientWrapper wraps the GitHub client to implement our interface
type githubClientWrapper struct {
	client *github.Client
}

func (w *githubClientWrapper) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	return w.client.Repositories.GetLatestRelease(ctx, owner, repo)
}

func (w *githubClientWrapper) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	return w.client.Repositories.CreateRelease(ctx, owner, repo, release)
}

// LatestReleaseTag returns the tag of the newest release. A repository with
// no releases yet reports 404, which maps to the v0 baseline so the first
// published release becomes v1.
func (s *System) LatestReleaseTag(ctx context.Context, org, repo, token string) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("org", org).Str("repo", repo).Msg("fetching latest release tag")

	release, resp, err := s.releases(token).GetLatestRelease(ctx, org, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			logger.Debug().Msg("no releases yet, starting from baseline")
			return version.Baseline, nil
		}
		return "", errors.Errorf("getting latest release from GitHub: %w", err)
	}

	return release.GetTagName(), nil
}

// CreateRelease publishes a new release under tag and returns its browsable URL.
func (s *System) CreateRelease(ctx context.Context, org, repo, token, tag string) (*Release, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("org", org).Str("repo", repo).Str("tag", tag).Msg("creating release")

	created, _, err := s.releases(token).CreateRelease(ctx, org, repo, &github.RepositoryRelease{
		TagName: github.String(tag),
	})
	if err != nil {
		return nil, errors.Errorf("creating release on GitHub: %w", err)
	}

	return &Release{
		TagName: created.GetTagName(),
		URL:     created.GetHTMLURL(),
	}, nil
}
